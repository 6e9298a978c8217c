package mock

import "github.com/fwojciec/harvest"

var _ harvest.FallbackExtractor = (*FallbackExtractor)(nil)

// FallbackExtractor is a mock implementation of harvest.FallbackExtractor.
type FallbackExtractor struct {
	ExtractOneFn func(html string, sourceURL string) (*harvest.FallbackRecord, error)
}

func (f *FallbackExtractor) ExtractOne(html string, sourceURL string) (*harvest.FallbackRecord, error) {
	return f.ExtractOneFn(html, sourceURL)
}

var _ harvest.Converter = (*Converter)(nil)

// Converter is a mock implementation of harvest.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
