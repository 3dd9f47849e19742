// Package scraper composes the resolver, fetcher, parsers and normalizer
// into the single-item and batch scraping operations.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopsight/product-scraper/internal/config"
	"github.com/shopsight/product-scraper/internal/fetcher"
	"github.com/shopsight/product-scraper/internal/metrics"
	"github.com/shopsight/product-scraper/internal/models"
	"github.com/shopsight/product-scraper/internal/normalizer"
	"github.com/shopsight/product-scraper/internal/parser"
	"github.com/shopsight/product-scraper/internal/source"
)

type Service struct {
	fetcher *fetcher.Fetcher
	workers int
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(cfg *config.Config, f *fetcher.Fetcher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		fetcher: f,
		workers: cfg.Scraper.Workers,
		logger:  logger.With("component", "scraper"),
		metrics: m,
	}
}

// Request is the immutable input for one extraction.
type Request struct {
	URL    string
	Source models.Source
}

// Sources lists the supported sources for the discovery endpoint.
func (s *Service) Sources() []source.Info {
	return source.Supported()
}

// ScrapeOne runs resolve, fetch, parse and normalize for one URL. The
// first failing stage short-circuits the call with its error kind.
func (s *Service) ScrapeOne(ctx context.Context, req Request) (*models.Product, error) {
	start := time.Now()

	product, err := s.scrape(ctx, req)

	outcome := "success"
	srcLabel := string(req.Source)
	if product != nil {
		srcLabel = string(product.Source)
	}
	if err != nil {
		outcome = string(models.KindOf(err))
		s.logger.Error("scrape failed",
			"url", req.URL,
			"kind", outcome,
			"error", err,
		)
	} else {
		s.logger.Info("scrape completed",
			"url", req.URL,
			"source", srcLabel,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	s.metrics.IncScrape(srcLabel, outcome)
	s.metrics.ObserveDuration(time.Since(start))

	return product, err
}

func (s *Service) scrape(ctx context.Context, req Request) (*models.Product, error) {
	src, err := source.Resolve(req.URL, req.Source)
	if err != nil {
		return nil, err
	}

	p, ok := parser.ForSource(src)
	if !ok {
		return nil, models.NewError(models.ErrUnsupportedSource, req.URL,
			fmt.Errorf("no parser registered for source %q", src))
	}

	doc, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	raw, err := p.Parse(doc)
	if err != nil {
		return nil, err
	}

	return normalizer.Normalize(raw, src, doc)
}
