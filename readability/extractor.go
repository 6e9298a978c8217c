// Package readability recovers single records from non-listing pages
// using the Mozilla readability heuristics.
package readability

import (
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/fwojciec/harvest"
)

// ExtractorName identifies records produced by this package.
const ExtractorName = "readability"

const maxDescriptionLen = 2000

// Ensure Extractor implements harvest.FallbackExtractor at compile time.
var _ harvest.FallbackExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to recover a single record from a page
// where container detection found nothing. It is an alternative to the
// trafilatura extractor with a different set of content heuristics.
type Extractor struct {
	converter harvest.Converter
}

// NewExtractor creates a new Extractor. The converter turns recovered
// content into a Markdown description; nil skips the description field.
func NewExtractor(converter harvest.Converter) *Extractor {
	return &Extractor{converter: converter}
}

// ExtractOne extracts the page's main content as a single record.
func (e *Extractor) ExtractOne(rawHTML string, sourceURL string) (*harvest.FallbackRecord, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "empty HTML input")
	}

	var pageURL *url.URL
	if sourceURL != "" {
		pageURL, _ = url.Parse(sourceURL)
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "no extractable content: %v", err)
	}

	record := harvest.Record{SourceID: harvest.NoParent}
	if title := strings.TrimSpace(article.Title); title != "" {
		record.Fields = append(record.Fields, harvest.Field{
			Name: harvest.FieldName, Value: title, Confidence: 1,
		})
	}
	if sourceURL != "" {
		record.Fields = append(record.Fields, harvest.Field{
			Name: harvest.FieldURL, Value: sourceURL, Confidence: 1,
		})
	}
	if image := strings.TrimSpace(article.Image); image != "" {
		record.Fields = append(record.Fields, harvest.Field{
			Name: harvest.FieldImage, Value: image, Confidence: 1,
		})
	}
	if desc := e.description(article.Content, article.Excerpt); desc != "" {
		record.Fields = append(record.Fields, harvest.Field{
			Name: harvest.FieldDescription, Value: desc, Confidence: 1,
		})
	}

	if !record.Identified() {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "page has no usable content")
	}
	return &harvest.FallbackRecord{Record: record, Extractor: ExtractorName}, nil
}

// description converts the recovered content HTML to Markdown, falling
// back to the plain excerpt when no converter is configured.
func (e *Extractor) description(content, excerpt string) string {
	desc := strings.TrimSpace(excerpt)
	if e.converter != nil && strings.TrimSpace(content) != "" {
		if md, err := e.converter.Convert(content); err == nil {
			desc = strings.TrimSpace(md)
		}
	}
	if len(desc) > maxDescriptionLen {
		desc = desc[:maxDescriptionLen]
	}
	return desc
}
