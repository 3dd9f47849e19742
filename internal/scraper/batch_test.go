package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsight/product-scraper/internal/models"
)

func TestScrapeManyMixedResults(t *testing.T) {
	s := newTestService(t)

	httpmock.RegisterResponder(http.MethodGet, "https://www.amazon.com/dp/B08N5WRWNW",
		httpmock.NewStringResponder(200, amazonFixture))
	httpmock.RegisterResponder(http.MethodGet, "https://www.ebay.com/itm/234567890123",
		httpmock.NewStringResponder(200, ebayFixture))

	urls := []string{
		"https://www.amazon.com/dp/B08N5WRWNW",
		"https://unknown-host.example/x",
		"https://www.ebay.com/itm/234567890123",
	}

	results := s.ScrapeMany(context.Background(), urls)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.Equal(t, models.SourceAmazon, results[0].Product.Source)

	require.False(t, results[1].Success)
	require.NotNil(t, results[1].Error)
	assert.Equal(t, "https://unknown-host.example/x", results[1].Error.URL)
	assert.Equal(t, models.ErrUnsupportedSource, results[1].Error.Kind)

	assert.True(t, results[2].Success)
	assert.Equal(t, models.SourceEbay, results[2].Product.Source)
}

func TestScrapeManyItemIsolation(t *testing.T) {
	s := newTestService(t)

	httpmock.RegisterResponder(http.MethodGet, "https://www.amazon.com/dp/OK",
		httpmock.NewStringResponder(200, amazonFixture))
	httpmock.RegisterResponder(http.MethodGet, "https://www.amazon.com/dp/DOWN",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	urls := []string{
		"https://www.amazon.com/dp/OK",
		"https://www.amazon.com/dp/DOWN",
		"https://www.amazon.com/dp/OK",
	}

	results := s.ScrapeMany(context.Background(), urls)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.True(t, results[2].Success)

	require.False(t, results[1].Success)
	assert.Equal(t, models.ErrFetchFailed, results[1].Error.Kind)
	assert.Equal(t, "https://www.amazon.com/dp/DOWN", results[1].Error.URL)

	// Sibling successes match what a single-item call produces.
	single, err := s.ScrapeOne(context.Background(), Request{
		URL:    "https://www.amazon.com/dp/OK",
		Source: models.SourceAuto,
	})
	require.NoError(t, err)
	single.ScrapedAt = results[0].Product.ScrapedAt
	assert.Equal(t, single, results[0].Product)
}

func TestScrapeManyPreservesInputOrder(t *testing.T) {
	s := newTestService(t)

	// Randomized per-item latency must not reorder results.
	var urls []string
	for i := 0; i < 20; i++ {
		url := fmt.Sprintf("https://www.amazon.com/dp/ITEM%02d", i)
		urls = append(urls, url)
		fixture := fmt.Sprintf(`<html><body>
			<span id="productTitle">Item %02d</span>
			<div class="a-price"><span class="a-offscreen">$%d.00</span></div>
		</body></html>`, i, i+1)
		httpmock.RegisterResponder(http.MethodGet, url,
			func(fixture string) httpmock.Responder {
				return func(req *http.Request) (*http.Response, error) {
					time.Sleep(time.Duration(rand.Intn(30)) * time.Millisecond)
					resp := httpmock.NewStringResponse(200, fixture)
					resp.Request = req
					return resp, nil
				}
			}(fixture))
	}

	results := s.ScrapeMany(context.Background(), urls)
	require.Len(t, results, len(urls))

	for i, res := range results {
		require.True(t, res.Success, "item %d failed", i)
		assert.Equal(t, fmt.Sprintf("Item %02d", i), res.Product.Name)
		assert.Equal(t, urls[i], res.Product.URL)
	}
}

func TestScrapeManyDuplicateURLs(t *testing.T) {
	s := newTestService(t)

	httpmock.RegisterResponder(http.MethodGet, "https://www.amazon.com/dp/B08N5WRWNW",
		httpmock.NewStringResponder(200, amazonFixture))

	urls := []string{
		"https://www.amazon.com/dp/B08N5WRWNW",
		"https://www.amazon.com/dp/B08N5WRWNW",
	}

	results := s.ScrapeMany(context.Background(), urls)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.Equal(t, results[0].Product.ID, results[1].Product.ID)

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 2, info["GET https://www.amazon.com/dp/B08N5WRWNW"],
		"each occurrence is fetched independently")
}

func TestScrapeManyEmptyInput(t *testing.T) {
	s := newTestService(t)

	results := s.ScrapeMany(context.Background(), nil)
	assert.Empty(t, results)
}

func TestScrapeManyCancelMidFlightKeepsCompletedResults(t *testing.T) {
	s := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fastDone := make(chan struct{})
	httpmock.RegisterResponder(http.MethodGet, "https://www.amazon.com/dp/FAST",
		func(req *http.Request) (*http.Response, error) {
			defer close(fastDone)
			resp := httpmock.NewStringResponse(200, amazonFixture)
			resp.Request = req
			return resp, nil
		})
	httpmock.RegisterResponder(http.MethodGet, "https://www.amazon.com/dp/STUCK",
		func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})

	go func() {
		<-fastDone
		cancel()
	}()

	results := s.ScrapeMany(ctx, []string{
		"https://www.amazon.com/dp/FAST",
		"https://www.amazon.com/dp/STUCK",
	})
	require.Len(t, results, 2)

	// Work finished before the cancel keeps its result.
	assert.True(t, results[0].Success)
	require.NotNil(t, results[0].Product)
	assert.Equal(t, models.SourceAmazon, results[0].Product.Source)

	require.False(t, results[1].Success)
	require.NotNil(t, results[1].Error)
	assert.Equal(t, models.ErrCancelled, results[1].Error.Kind)
	assert.Equal(t, "https://www.amazon.com/dp/STUCK", results[1].Error.URL)
}

func TestScrapeManyCancelledContext(t *testing.T) {
	s := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := s.ScrapeMany(ctx, []string{
		"https://www.amazon.com/dp/B08N5WRWNW",
		"https://www.ebay.com/itm/234567890123",
	})
	require.Len(t, results, 2)

	for i, res := range results {
		require.False(t, res.Success, "item %d should be cancelled", i)
		assert.Equal(t, models.ErrCancelled, res.Error.Kind)
	}
}
