package harvest

import "context"

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// Returns the Markdown representation of the content.
	Convert(html string) (string, error)
}

// FallbackRecord is a single record recovered from a page where no
// container was chosen, typically a detail page for one item.
type FallbackRecord struct {
	Record Record `json:"record"`

	// Extractor names the implementation that produced the record.
	Extractor string `json:"extractor"`
}

// FallbackExtractor recovers one record from a non-listing page. It is a
// caller-side collaborator applied outside the engine when detection
// reports OutcomeStructuralNotFound.
type FallbackExtractor interface {
	// ExtractOne extracts the page's main content as a single record.
	// Returns ENOTFOUND if the page has no usable content.
	ExtractOne(html string, sourceURL string) (*FallbackRecord, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
