// Package normalize canonicalizes raw text and URLs into comparable keys.
// The keys feed the dedup cascade and the content fingerprint, so every
// function here must be stable across runs, not just within one process.
package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	parenPattern      = regexp.MustCompile(`\(.*?\)`)
	titleJunkPattern  = regexp.MustCompile(`[^a-z0-9\x{4e00}-\x{9fff}]+`)
	tokenPattern      = regexp.MustCompile(`[a-z0-9]+|[\x{4e00}-\x{9fff}]`)
	hanPattern        = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)
)

// CleanText strips markup tags and collapses whitespace runs.
func CleanText(text string) string {
	s := tagPattern.ReplaceAllString(text, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Title reduces a title to its comparison key: lowercase, parenthesized
// substrings removed, everything except ASCII alphanumerics and CJK
// ideographs collapsed to single spaces.
func Title(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = parenPattern.ReplaceAllString(s, "")
	s = titleJunkPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// URL returns the canonical form of a link, or "" when the link is not a
// usable http(s) URL. Tracking parameters (utm_*) are stripped, remaining
// query parameters are sorted, and the fragment is dropped, so two links
// that differ only in tracking noise share one key.
func URL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}

	type pair struct{ key, value string }
	var pairs []pair
	for _, part := range strings.Split(u.RawQuery, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			decodedKey = key
		}
		if strings.HasPrefix(decodedKey, "utm_") {
			continue
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			decodedValue = value
		}
		pairs = append(pairs, pair{decodedKey, decodedValue})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	var query strings.Builder
	for i, p := range pairs {
		if i > 0 {
			query.WriteByte('&')
		}
		query.WriteString(url.QueryEscape(p.key))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(p.value))
	}

	u.RawQuery = query.String()
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Fingerprint hashes a title into the stable content key used for
// near-duplicate grouping and the downstream summary cache. Falls back to
// the raw lowercased title when normalization yields an empty key.
func Fingerprint(title string) string {
	key := Title(title)
	if key == "" {
		key = strings.ToLower(title)
	}
	return SHA1(key)
}

// SHA1 returns the hex SHA-1 digest of text.
func SHA1(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Tokenize lowercases text and splits it into ASCII alphanumeric runs and
// individual CJK ideographs.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// ContainsHan reports whether text contains a CJK Unified Ideograph.
func ContainsHan(text string) bool {
	return hanPattern.MatchString(text)
}
