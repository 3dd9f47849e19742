// Package parser holds the site-specific extraction strategies. Each
// supported source implements Parser; adding a site means adding one
// implementation and one registry entry, the orchestrator is untouched.
package parser

import (
	"github.com/shopsight/product-scraper/internal/models"
)

type Parser interface {
	// Source reports which site this parser understands.
	Source() models.Source

	// Parse extracts the raw field bag from one fetched document.
	// Optional fields resolve to empty values; a missing mandatory field
	// (name, price) fails with a parse_failed error naming the field.
	Parse(doc *models.Document) (*models.RawProduct, error)
}

var registry = map[models.Source]Parser{
	models.SourceAmazon: NewAmazonParser(),
	models.SourceEbay:   NewEbayParser(),
}

// ForSource returns the registered parser for a resolved source.
func ForSource(src models.Source) (Parser, bool) {
	p, ok := registry[src]
	return p, ok
}
