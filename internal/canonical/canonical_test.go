package canonical

import (
	"strings"
	"testing"
	"time"

	"tarmac.news/avdigest/internal/globaltime"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc1123z", "Thu, 28 Aug 2026 09:30:00 +0800", time.Date(2026, 8, 28, 1, 30, 0, 0, time.UTC)},
		{"iso with offset", "2026-08-28T09:30:00+08:00", time.Date(2026, 8, 28, 1, 30, 0, 0, time.UTC)},
		{"iso zulu", "2026-08-28T01:30:00Z", time.Date(2026, 8, 28, 1, 30, 0, 0, time.UTC)},
		{"date only", "2026-08-28", time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)},
		{"garbage", "yesterday-ish", UnparsableFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseTime(tc.in); !got.Equal(tc.want) {
				t.Fatalf("ParseTime(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseTime_EmptyUsesClock(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(now)
	defer globaltime.ResetTime()

	if got := ParseTime("  "); !got.Equal(now) {
		t.Fatalf("ParseTime(empty) = %v, want clock time %v", got, now)
	}
}

func TestUTCISO_SortsChronologically(t *testing.T) {
	early := UTCISO(time.Date(2026, 8, 28, 1, 30, 0, 0, time.UTC))
	late := UTCISO(time.Date(2026, 8, 28, 9, 30, 0, 0, time.FixedZone("CST", 8*3600)))
	if early != "2026-08-28T01:30:00+00:00" {
		t.Fatalf("unexpected format: %q", early)
	}
	if !(early < late) {
		t.Fatalf("string order broke chronology: %q !< %q", early, late)
	}
}

func TestFromRaw(t *testing.T) {
	row := RawRecord{
		SourceID:   "rss_waymo",
		SourceName: "Waymo Blog",
		Region:     "Foreign",
		Payload: RawPayload{
			Title:     "<b>Waymo expands</b> robotaxi service",
			Content:   "<p>Waymo said it will   expand driverless rides.</p>",
			Link:      "https://waymo.test/blog/expand?utm_source=rss",
			Published: "Thu, 28 Aug 2026 09:30:00 +0800",
		},
	}
	item, err := FromRaw(row)
	if err != nil {
		t.Fatalf("FromRaw: %v", err)
	}
	if item.Title != "Waymo expands robotaxi service" {
		t.Errorf("title not cleaned: %q", item.Title)
	}
	if item.Content != "Waymo said it will expand driverless rides." {
		t.Errorf("content not cleaned: %q", item.Content)
	}
	if item.Link != "https://waymo.test/blog/expand" {
		t.Errorf("link not normalized: %q", item.Link)
	}
	if item.PublishedAtUTC != "2026-08-28T01:30:00+00:00" {
		t.Errorf("published = %q", item.PublishedAtUTC)
	}
	if item.PublishedMissing {
		t.Error("published marked missing")
	}
	if item.Region != "foreign" {
		t.Errorf("region = %q", item.Region)
	}
	if item.ID == "" || item.Fingerprint == "" {
		t.Error("missing identity hash or fingerprint")
	}
	if item.Language != "en" {
		t.Errorf("language = %q", item.Language)
	}
}

func TestFromRaw_SummaryAndURLFallbacks(t *testing.T) {
	row := RawRecord{
		SourceID: "rss_x",
		URL:      "https://x.test/fallback",
		Payload: RawPayload{
			Title:   "百度萝卜快跑获准在武汉全无人运营",
			Summary: "百度旗下萝卜快跑获得武汉全无人驾驶运营许可。",
		},
	}
	item, err := FromRaw(row)
	if err != nil {
		t.Fatalf("FromRaw: %v", err)
	}
	if item.Link != "https://x.test/fallback" {
		t.Errorf("link fallback failed: %q", item.Link)
	}
	if item.Content == "" {
		t.Error("summary fallback failed")
	}
	if !item.PublishedMissing || item.PublishedAtUTC != "" {
		t.Errorf("missing published not flagged: missing=%v value=%q", item.PublishedMissing, item.PublishedAtUTC)
	}
	if item.Language != "zh" {
		t.Errorf("language = %q", item.Language)
	}
}

func TestFromRaw_RejectsUnusable(t *testing.T) {
	cases := []struct {
		name string
		row  RawRecord
	}{
		{"no title", RawRecord{Payload: RawPayload{Link: "https://x.test/a"}}},
		{"no link", RawRecord{Payload: RawPayload{Title: "Robotaxi pilot"}}},
		{"bad scheme", RawRecord{Payload: RawPayload{Title: "Robotaxi pilot", Link: "ftp://x.test/a"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromRaw(tc.row); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFromRaw_ClampsContentByRune(t *testing.T) {
	row := RawRecord{
		Payload: RawPayload{
			Title:   "长文测试",
			Link:    "https://x.test/long",
			Content: strings.Repeat("驾", maxContentLength+50),
		},
	}
	item, err := FromRaw(row)
	if err != nil {
		t.Fatalf("FromRaw: %v", err)
	}
	runes := []rune(item.Content)
	if len(runes) != maxContentLength {
		t.Fatalf("content clamped to %d runes, want %d", len(runes), maxContentLength)
	}
	if !strings.HasSuffix(item.Content, "驾") {
		t.Fatal("clamp split a rune")
	}
}
