// Package canonical reduces fetched records to the normalized, comparable
// shape the rest of the pipeline operates on.
package canonical

import (
	"fmt"
	"strings"

	"tarmac.news/avdigest/internal/langdetect"
	"tarmac.news/avdigest/internal/normalize"
)

const maxContentLength = 8000

// RawRecord is one fetched document as the fetch collaborator wrote it.
type RawRecord struct {
	SourceID    string     `json:"source_id"`
	SourceName  string     `json:"source_name"`
	SourceType  string     `json:"source_type"`
	Region      string     `json:"region"`
	CompanyHint string     `json:"company_hint"`
	FetchedAt   string     `json:"fetched_at"`
	URL         string     `json:"url"`
	Payload     RawPayload `json:"payload"`
}

// RawPayload carries the source-specific document fields.
type RawPayload struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Summary    string `json:"summary"`
	Link       string `json:"link"`
	Published  string `json:"published"`
	SourceName string `json:"source_name"`
}

// Item is a canonical item: clean text, normalized link, stable identity
// hash and content fingerprint. Immutable once built.
type Item struct {
	ID               string `json:"id"`
	SourceID         string `json:"source_id"`
	SourceName       string `json:"source_name"`
	Region           string `json:"region"`
	CompanyHint      string `json:"company_hint"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	Link             string `json:"link"`
	PublishedAtUTC   string `json:"published_at_utc"`
	PublishedMissing bool   `json:"published_missing"`
	Language         string `json:"language"`
	Fingerprint      string `json:"fingerprint"`
}

// FromRaw builds a canonical item from a raw record. Records without a
// usable title or http(s) link cannot participate in dedup or scoring and
// are rejected here rather than carried forward.
func FromRaw(row RawRecord) (Item, error) {
	title := normalize.CleanText(row.Payload.Title)
	content := normalize.CleanText(row.Payload.Content)
	if content == "" {
		content = normalize.CleanText(row.Payload.Summary)
	}

	link := normalize.URL(row.Payload.Link)
	if link == "" {
		link = normalize.URL(row.URL)
	}
	if title == "" || link == "" {
		return Item{}, fmt.Errorf("record from source %q has no usable title or link", row.SourceID)
	}

	rawPublished := strings.TrimSpace(row.Payload.Published)
	publishedMissing := rawPublished == ""
	published := ""
	if !publishedMissing {
		published = UTCISO(ParseTime(rawPublished))
	}

	sourceName := strings.TrimSpace(row.Payload.SourceName)
	if sourceName == "" {
		sourceName = strings.TrimSpace(row.SourceName)
	}

	if runes := []rune(content); len(runes) > maxContentLength {
		content = string(runes[:maxContentLength])
	}

	return Item{
		ID:               normalize.SHA1(link + "|" + published + "|" + title),
		SourceID:         strings.TrimSpace(row.SourceID),
		SourceName:       sourceName,
		Region:           strings.ToLower(strings.TrimSpace(row.Region)),
		CompanyHint:      strings.TrimSpace(row.CompanyHint),
		Title:            title,
		Content:          content,
		Link:             link,
		PublishedAtUTC:   published,
		PublishedMissing: publishedMissing,
		Language:         langdetect.Detect(title + " " + content),
		Fingerprint:      normalize.Fingerprint(title),
	}, nil
}
