// Package trafilatura recovers single records from non-listing pages.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/fwojciec/harvest"
)

// ExtractorName identifies records produced by this package.
const ExtractorName = "trafilatura"

const maxDescriptionLen = 2000

// Ensure Extractor implements harvest.FallbackExtractor at compile time.
var _ harvest.FallbackExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to recover a single record from a page
// where container detection found nothing, typically a detail page for
// one item.
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

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "no extractable content: %v", err)
	}

	record := harvest.Record{SourceID: harvest.NoParent}
	if title := strings.TrimSpace(result.Metadata.Title); title != "" {
		record.Fields = append(record.Fields, harvest.Field{
			Name: harvest.FieldName, Value: title, Confidence: 1,
		})
	}
	if sourceURL != "" {
		record.Fields = append(record.Fields, harvest.Field{
			Name: harvest.FieldURL, Value: sourceURL, Confidence: 1,
		})
	}
	if image := strings.TrimSpace(result.Metadata.Image); image != "" {
		record.Fields = append(record.Fields, harvest.Field{
			Name: harvest.FieldImage, Value: image, Confidence: 1,
		})
	}
	if desc := e.description(result.ContentNode); desc != "" {
		record.Fields = append(record.Fields, harvest.Field{
			Name: harvest.FieldDescription, Value: desc, Confidence: 1,
		})
	}

	if !record.Identified() {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "page has no usable content")
	}
	return &harvest.FallbackRecord{Record: record, Extractor: ExtractorName}, nil
}

// description renders the recovered content node as Markdown, truncated
// to a sane length.
func (e *Extractor) description(node *html.Node) string {
	if node == nil || e.converter == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return ""
	}
	md, err := e.converter.Convert(buf.String())
	if err != nil {
		return ""
	}
	md = strings.TrimSpace(md)
	if len(md) > maxDescriptionLen {
		md = md[:maxDescriptionLen]
	}
	return md
}
