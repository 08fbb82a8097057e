package relevance

import (
	"net/url"
	"strings"
	"time"

	"tarmac.news/avdigest/internal/canonical"
	"tarmac.news/avdigest/internal/globaltime"
	"tarmac.news/avdigest/internal/normalize"
)

// CheckHardConstraints runs the structural admissibility checks in order.
// Any failure short-circuits with a reason code; the item is never scored.
func CheckHardConstraints(item canonical.Item, rule SourceRule, settings Settings, runDate string) (bool, Reason) {
	normURL := normalize.URL(item.Link)
	if normURL == "" {
		return false, ReasonURLInvalid
	}

	parsed, err := url.Parse(normURL)
	if err != nil {
		return false, ReasonURLInvalid
	}
	path := strings.ToLower(parsed.Path)
	if path == "" || path == "/" {
		return false, ReasonURLHomepage
	}

	if len(rule.URLBlockPatterns) > 0 && containsAny(path, rule.URLBlockPatterns) {
		return false, ReasonURLBlockedPattern
	}
	if len(rule.URLAllowPatterns) > 0 && !containsAny(path, rule.URLAllowPatterns) {
		return false, ReasonURLNotInAllow
	}

	published := strings.TrimSpace(item.PublishedAtUTC)
	publishedMissing := item.PublishedMissing || published == ""

	if publishedMissing {
		_, allowed := settings.AllowMissingPublished[rule.Profile]
		if settings.StrictTodayMode || !allowed {
			return false, ReasonPublishedMissing
		}
		return true, ""
	}

	if settings.StrictTodayMode {
		if !isSameDayIn(published, runDate, settings.StrictTodayLocation) {
			return false, ReasonNotToday
		}
	} else if !isRecent(published, time.Duration(settings.WindowDays)*24*time.Hour) {
		return false, ReasonTimeWindow
	}

	if rule.MaxAgeHours > 0 && !isRecent(published, time.Duration(rule.MaxAgeHours)*time.Hour) {
		return false, ReasonSourceMaxAge
	}

	return true, ""
}

func containsAny(text string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}

func isRecent(published string, window time.Duration) bool {
	if strings.TrimSpace(published) == "" {
		return false
	}
	cutoff := globaltime.UTC().Add(-window)
	return !canonical.ParseTime(published).Before(cutoff)
}

func isSameDayIn(published, runDate string, loc *time.Location) bool {
	if strings.TrimSpace(published) == "" || strings.TrimSpace(runDate) == "" {
		return false
	}
	local := canonical.ParseTime(published).In(loc)
	return local.Format("2006-01-02") == runDate
}
