package relevance

import (
	"time"

	"tarmac.news/avdigest/internal/canonical"
)

// IsFastPass decides the shortcut acceptance: a very recent item whose
// title is obviously on-topic skips weighted scoring entirely. The general
// gate is deliberately strict, so this exists to avoid false negatives on
// breaking news.
func IsFastPass(item canonical.Item, signals SignalVector, settings Settings) bool {
	if !settings.FastPassEnabled {
		return false
	}
	if len(signals.FastPassTitleHits) == 0 {
		return false
	}

	window := time.Duration(settings.FastPassWindowHours) * time.Hour
	if !isRecent(item.PublishedAtUTC, window) {
		return false
	}

	if settings.FastPassRequireCompanyOrContext {
		hasCompanySignal := len(signals.CompanyHits) > 0 || len(signals.BrandHits) > 0
		hasContextSignal := len(signals.ContextHits) > 0
		if !hasCompanySignal && !hasContextSignal {
			return false
		}
	}
	return true
}
