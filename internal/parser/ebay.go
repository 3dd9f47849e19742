package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopsight/product-scraper/internal/models"
)

// EbayParser extracts product fields from eBay item pages.
type EbayParser struct{}

func NewEbayParser() *EbayParser {
	return &EbayParser{}
}

func (p *EbayParser) Source() models.Source {
	return models.SourceEbay
}

func (p *EbayParser) Parse(doc *models.Document) (*models.RawProduct, error) {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		return nil, models.NewError(models.ErrParseFailed, doc.URL,
			fmt.Errorf("parse html: %w", err))
	}

	raw := &models.RawProduct{}

	raw.Name = strings.TrimSpace(
		root.Find("h1.x-item-title__mainTitle span").First().Text())
	if raw.Name == "" {
		raw.Name = strings.TrimSpace(root.Find("h1.x-item-title__mainTitle").First().Text())
	}
	if raw.Name == "" {
		return nil, models.NewParseError(doc.URL, "name")
	}

	raw.PriceText = strings.TrimSpace(
		root.Find(".x-price-primary span.ux-textspans").First().Text())
	if raw.PriceText == "" {
		return nil, models.NewParseError(doc.URL, "price")
	}

	raw.OriginalPriceText = strings.TrimSpace(
		root.Find(".x-additional-info span.ux-textspans--STRIKETHROUGH").First().Text())
	raw.Description = strings.TrimSpace(
		root.Find(".x-item-description, #viTabs_0_is .d-item-description").First().Text())
	raw.Images = p.extractImages(root)
	raw.Specs = p.extractSpecs(root)
	raw.Brand = p.brandFromSpecs(raw.Specs)
	raw.Reviews = p.extractReviews(root)
	raw.RatingText = strings.TrimSpace(
		root.Find(".x-review-details .ux-summary__start--rating span.ux-textspans").First().Text())
	raw.RatingCountText = strings.TrimSpace(
		root.Find(".x-review-details .ux-summary__count span.ux-textspans").First().Text())
	raw.Available = p.extractAvailability(root)

	return raw, nil
}

func (p *EbayParser) extractImages(root *goquery.Document) []models.RawImage {
	var images []models.RawImage
	seen := make(map[string]bool)

	root.Find(".ux-image-carousel-item img").Each(func(i int, s *goquery.Selection) {
		src := s.AttrOr("data-zoom-src", "")
		if src == "" {
			src = s.AttrOr("src", "")
		}
		if src == "" || seen[src] {
			return
		}
		seen[src] = true
		images = append(images, models.RawImage{
			URL: src,
			Alt: strings.TrimSpace(s.AttrOr("alt", "")),
		})
	})

	return images
}

// Item specifics are laid out as label/value column pairs.
func (p *EbayParser) extractSpecs(root *goquery.Document) []models.RawSpec {
	var specs []models.RawSpec

	root.Find(".x-about-this-item .ux-labels-values").Each(func(i int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find(".ux-labels-values__labels").First().Text())
		value := strings.TrimSpace(s.Find(".ux-labels-values__values").First().Text())
		if name != "" && value != "" {
			specs = append(specs, models.RawSpec{Name: name, Value: value})
		}
	})

	if len(specs) == 0 {
		root.Find(".ux-layout-section-evo dl").Each(func(i int, s *goquery.Selection) {
			name := strings.TrimSpace(s.Find("dt").First().Text())
			value := strings.TrimSpace(s.Find("dd").First().Text())
			if name != "" && value != "" {
				specs = append(specs, models.RawSpec{Name: name, Value: value})
			}
		})
	}

	return specs
}

func (p *EbayParser) brandFromSpecs(specs []models.RawSpec) string {
	for _, spec := range specs {
		name := strings.ToLower(spec.Name)
		if name == "brand" || name == "marke" {
			return spec.Value
		}
	}
	return ""
}

func (p *EbayParser) extractReviews(root *goquery.Document) []models.RawReview {
	var reviews []models.RawReview

	root.Find(".x-review-details .fdbk-container").Each(func(i int, s *goquery.Selection) {
		rating := strings.TrimSpace(
			s.Find(".fdbk-star-rating span.clipped").First().Text())
		comment := strings.TrimSpace(
			s.Find(".fdbk-container__details__comment span").First().Text())
		if rating == "" && comment == "" {
			return
		}
		reviews = append(reviews, models.RawReview{
			RatingText: rating,
			Comment:    comment,
			Author: strings.TrimSpace(
				s.Find(".fdbk-container__details__info__username span").First().Text()),
			Date: strings.TrimSpace(
				s.Find(".fdbk-container__details__info__divide span").First().Text()),
		})
	})

	return reviews
}

func (p *EbayParser) extractAvailability(root *goquery.Document) bool {
	quantity := strings.ToLower(strings.TrimSpace(
		root.Find(".d-quantity__availability span").First().Text()))

	if strings.Contains(quantity, "out of stock") ||
		strings.Contains(quantity, "sold out") ||
		strings.Contains(quantity, "ausverkauft") {
		return false
	}
	if quantity != "" {
		return true
	}

	// Listings without a quantity note are buyable while the buy box renders.
	return root.Find(".x-bin-action, .x-buybox-cta").Length() > 0
}
