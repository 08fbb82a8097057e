package normalize

import (
	"strings"
	"testing"
)

func TestURL_StripsTrackingAndFragment(t *testing.T) {
	a := URL("https://example.com/news/robotaxi?utm_source=rss&utm_campaign=daily&id=42#section")
	b := URL("https://example.com/news/robotaxi?id=42")
	if a == "" || b == "" {
		t.Fatalf("expected both URLs to normalize, got %q and %q", a, b)
	}
	if a != b {
		t.Fatalf("expected tracking params and fragment to be ignored: %q != %q", a, b)
	}
}

func TestURL_SortsQueryParams(t *testing.T) {
	a := URL("https://example.com/a?b=2&a=1")
	b := URL("https://example.com/a?a=1&b=2")
	if a != b {
		t.Fatalf("expected query order not to matter: %q != %q", a, b)
	}
}

func TestURL_RejectsNonHTTP(t *testing.T) {
	cases := []string{
		"ftp://example.com/file",
		"javascript:alert(1)",
		"not a url",
		"",
	}
	for _, raw := range cases {
		if got := URL(raw); got != "" {
			t.Errorf("URL(%q) = %q, expected empty", raw, got)
		}
	}
}

func TestURL_KeepsBlankQueryValues(t *testing.T) {
	got := URL("https://example.com/a?flag&x=1")
	if !strings.Contains(got, "flag=") {
		t.Fatalf("expected blank-valued param to survive, got %q", got)
	}
}

func TestTitle(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and trims", "  Robotaxi Launches  ", "robotaxi launches"},
		{"removes parenthesized", "Waymo expands (again) to Austin", "waymo expands to austin"},
		{"keeps cjk", "百度Apollo获准运营", "百度apollo获准运营"},
		{"collapses punctuation", "robotaxi: the - future!", "robotaxi the future"},
		{"empty after normalize", "!!! ???", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Title(tc.in); got != tc.want {
				t.Fatalf("Title(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFingerprint_StableAcrossCalls(t *testing.T) {
	a := Fingerprint("Robotaxi Launches in City X")
	b := Fingerprint("robotaxi launches  in city x!")
	if a == "" {
		t.Fatal("fingerprint is empty")
	}
	if a != b {
		t.Fatalf("equivalent titles produced different fingerprints: %q != %q", a, b)
	}
}

func TestFingerprint_FallsBackToRawTitle(t *testing.T) {
	a := Fingerprint("!!!")
	b := Fingerprint("???")
	if a == "" || b == "" {
		t.Fatal("expected non-empty fingerprints for unnormalizable titles")
	}
	if a == b {
		t.Fatal("distinct raw titles should not collide via the empty-key fallback")
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Waymo л launches 自动驾驶 in SF2024")
	want := []string{"waymo", "launches", "自", "动", "驾", "驶", "in", "sf2024"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
