package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"tarmac.news/avdigest/internal/normalize"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// Detect returns the ISO 639-1 code of text. Any CJK ideograph wins
// immediately as "zh" (the pipeline's domestic sources mix scripts and
// lingua misreads short mixed headlines); everything else goes through
// lingua with "en" as the fallback for samples too short to classify.
func Detect(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return "en"
	}
	if normalize.ContainsHan(sample) {
		return "zh"
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < 6 {
		return "en"
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return "en"
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return "en"
	}
	return code
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithPreloadedLanguageModels().
			Build()
	})
	return detector
}
