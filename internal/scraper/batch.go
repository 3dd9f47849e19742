package scraper

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/shopsight/product-scraper/internal/models"
)

// ScrapeMany runs ScrapeOne concurrently over urls, bounded by the
// configured worker limit. Each item resolves its source from its own
// URL. Every input gets exactly one result in input order; one item's
// failure never affects its siblings. Duplicate URLs are scraped once
// per occurrence.
func (s *Service) ScrapeMany(ctx context.Context, urls []string) []models.BatchItemResult {
	results := make([]models.BatchItemResult, len(urls))
	sem := semaphore.NewWeighted(int64(s.workers))

	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = errorResult(url, models.NewError(models.ErrCancelled, url, ctx.Err()))
				s.metrics.IncBatchItem("cancelled")
				return
			}
			defer sem.Release(1)

			product, err := s.ScrapeOne(ctx, Request{URL: url, Source: models.SourceAuto})
			if err != nil {
				results[i] = errorResult(url, err)
				s.metrics.IncBatchItem("error")
				return
			}
			results[i] = models.BatchItemResult{Success: true, Product: product}
			s.metrics.IncBatchItem("success")
		}(i, url)
	}
	wg.Wait()

	return results
}

func errorResult(url string, err error) models.BatchItemResult {
	return models.BatchItemResult{
		Success: false,
		Error: &models.ItemError{
			URL:     url,
			Kind:    models.KindOf(err),
			Message: err.Error(),
		},
	}
}
