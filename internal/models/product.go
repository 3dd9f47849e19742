package models

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies one supported e-commerce site.
type Source string

const (
	SourceAmazon Source = "amazon"
	SourceEbay   Source = "ebay"

	// SourceAuto asks the resolver to pick the source from the URL host.
	SourceAuto Source = "auto"
)

// ParseSource validates a caller-provided source string. An empty string
// is treated as auto.
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceAmazon, SourceEbay, SourceAuto:
		return Source(s), true
	case "":
		return SourceAuto, true
	default:
		return "", false
	}
}

// Document is the raw page content returned by the fetcher. It is not
// interpreted until a parser runs over it.
type Document struct {
	URL        string    `json:"url"`
	HTML       string    `json:"html"`
	StatusCode int       `json:"status_code"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// RawProduct is the untyped field bag a site parser extracts from one
// document. Values keep their on-page formatting; the normalizer turns
// them into the canonical Product shape.
type RawProduct struct {
	Name              string
	Brand             string
	PriceText         string
	OriginalPriceText string
	Description       string
	Images            []RawImage
	Specs             []RawSpec
	Reviews           []RawReview
	RatingText        string
	RatingCountText   string
	Available         bool
}

type RawImage struct {
	URL string
	Alt string
}

type RawSpec struct {
	Name  string
	Value string
}

type RawReview struct {
	RatingText string
	Comment    string
	Author     string
	Date       string
}

// Product is the canonical normalized record.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand,omitempty"`
	Price          Price           `json:"price"`
	Description    string          `json:"description,omitempty"`
	Images         []Image         `json:"images"`
	Specifications []Specification `json:"specifications"`
	Reviews        []Review        `json:"reviews"`
	Rating         Rating          `json:"rating"`
	Availability   bool            `json:"availability"`
	URL            string          `json:"url"`
	Source         Source          `json:"source"`
	ScrapedAt      time.Time       `json:"scraped_at"`
}

type Price struct {
	Current  float64  `json:"current"`
	Original *float64 `json:"original,omitempty"`
	Currency string   `json:"currency"`
}

type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

type Specification struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Review struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
	Author  string  `json:"author,omitempty"`
	Date    string  `json:"date,omitempty"`
}

type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// BatchItemResult holds the outcome for one URL of a batch call. Exactly
// one of Product and Error is set.
type BatchItemResult struct {
	Success bool       `json:"success"`
	Product *Product   `json:"product,omitempty"`
	Error   *ItemError `json:"error,omitempty"`
}

type ItemError struct {
	URL     string    `json:"url"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// ProductID derives the stable product identity for a (source, url) pair.
// UUIDv5 over the URL namespace keeps the id deterministic across runs so
// repeated scrapes of the same product update rather than duplicate.
func ProductID(src Source, url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(string(src)+":"+url)).String()
}
