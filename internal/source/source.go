// Package source maps product URLs to the site-specific extraction
// strategy that understands them.
package source

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopsight/product-scraper/internal/models"
)

// Info describes one supported source for the discovery endpoint.
type Info struct {
	Source     models.Source `json:"source"`
	Hosts      []string      `json:"hosts"`
	ExampleURL string        `json:"example_url"`
}

// Ordered table of supported sources. Resolution walks it in order and the
// first host match wins.
var sources = []Info{
	{
		Source:     models.SourceAmazon,
		Hosts:      []string{"amazon.com", "amazon.de", "amazon.co.uk"},
		ExampleURL: "https://www.amazon.com/dp/B08N5WRWNW",
	},
	{
		Source:     models.SourceEbay,
		Hosts:      []string{"ebay.com", "ebay.de", "ebay.co.uk"},
		ExampleURL: "https://www.ebay.com/itm/234567890123",
	},
}

// Supported returns the source table in resolution order.
func Supported() []Info {
	out := make([]Info, len(sources))
	copy(out, sources)
	return out
}

// Resolve determines which source handles rawURL. A concrete hint is a
// caller assertion: if the host does not belong to the hinted source the
// call fails with source_mismatch instead of silently overriding it.
func Resolve(rawURL string, hint models.Source) (models.Source, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "", models.NewError(models.ErrUnsupportedSource, rawURL,
			fmt.Errorf("url has no recognizable host"))
	}
	host := strings.ToLower(parsed.Hostname())

	if hint != "" && hint != models.SourceAuto {
		if matchesSource(host, hint) {
			return hint, nil
		}
		return "", models.NewError(models.ErrSourceMismatch, rawURL,
			fmt.Errorf("host %q does not belong to source %q", host, hint))
	}

	for _, info := range sources {
		if hostMatches(host, info.Hosts) {
			return info.Source, nil
		}
	}
	return "", models.NewError(models.ErrUnsupportedSource, rawURL,
		fmt.Errorf("no source registered for host %q", host))
}

func matchesSource(host string, src models.Source) bool {
	for _, info := range sources {
		if info.Source == src {
			return hostMatches(host, info.Hosts)
		}
	}
	return false
}

func hostMatches(host string, patterns []string) bool {
	for _, p := range patterns {
		if host == p || strings.HasSuffix(host, "."+p) {
			return true
		}
	}
	return false
}
