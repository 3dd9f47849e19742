package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsight/product-scraper/internal/models"
)

func TestResolveAuto(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected models.Source
		kind     models.ErrorKind
	}{
		{
			name:     "amazon.com product page",
			url:      "https://www.amazon.com/dp/B08N5WRWNW",
			expected: models.SourceAmazon,
		},
		{
			name:     "amazon.de without www",
			url:      "https://amazon.de/dp/B07PGL2N7J",
			expected: models.SourceAmazon,
		},
		{
			name:     "amazon.co.uk subdomain",
			url:      "https://www.amazon.co.uk/gp/product/B0C1234567",
			expected: models.SourceAmazon,
		},
		{
			name:     "ebay.com item page",
			url:      "https://www.ebay.com/itm/234567890123",
			expected: models.SourceEbay,
		},
		{
			name:     "ebay.de item page",
			url:      "https://www.ebay.de/itm/987654321098",
			expected: models.SourceEbay,
		},
		{
			name: "unknown host",
			url:  "https://unknown-host.example/x",
			kind: models.ErrUnsupportedSource,
		},
		{
			name: "lookalike host is not a suffix match",
			url:  "https://notamazon.com/dp/B08N5WRWNW",
			kind: models.ErrUnsupportedSource,
		},
		{
			name: "url without host",
			url:  "not a url",
			kind: models.ErrUnsupportedSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Resolve(tt.url, models.SourceAuto)

			if tt.kind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.kind, models.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, src)
		})
	}
}

func TestResolveWithHint(t *testing.T) {
	src, err := Resolve("https://www.amazon.com/dp/B08N5WRWNW", models.SourceAmazon)
	require.NoError(t, err)
	assert.Equal(t, models.SourceAmazon, src)
}

func TestResolveHintMismatch(t *testing.T) {
	// The host would resolve fine on auto, but the hint is an assertion
	// and must not be silently overridden.
	_, err := Resolve("https://www.ebay.com/itm/234567890123", models.SourceAmazon)
	require.Error(t, err)
	assert.Equal(t, models.ErrSourceMismatch, models.KindOf(err))

	src, err := Resolve("https://www.ebay.com/itm/234567890123", models.SourceAuto)
	require.NoError(t, err)
	assert.Equal(t, models.SourceEbay, src)
}

func TestResolveEmptyHintIsAuto(t *testing.T) {
	src, err := Resolve("https://www.ebay.co.uk/itm/111222333444", models.Source(""))
	require.NoError(t, err)
	assert.Equal(t, models.SourceEbay, src)
}

func TestSupportedListsAllSources(t *testing.T) {
	infos := Supported()
	require.Len(t, infos, 2)
	assert.Equal(t, models.SourceAmazon, infos[0].Source)
	assert.Equal(t, models.SourceEbay, infos[1].Source)
	for _, info := range infos {
		assert.NotEmpty(t, info.Hosts)
		assert.NotEmpty(t, info.ExampleURL)
	}
}
