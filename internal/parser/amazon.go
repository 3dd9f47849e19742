package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopsight/product-scraper/internal/models"
)

// AmazonParser extracts product fields from Amazon product pages.
type AmazonParser struct {
	priceSelectors []string
}

func NewAmazonParser() *AmazonParser {
	return &AmazonParser{
		priceSelectors: []string{
			".a-price .a-offscreen",
			".a-price-whole",
			"#priceblock_dealprice",
			"#priceblock_ourprice",
			"span.a-price.a-text-price.a-size-medium.apexPriceToPay",
		},
	}
}

func (p *AmazonParser) Source() models.Source {
	return models.SourceAmazon
}

func (p *AmazonParser) Parse(doc *models.Document) (*models.RawProduct, error) {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		return nil, models.NewError(models.ErrParseFailed, doc.URL,
			fmt.Errorf("parse html: %w", err))
	}

	raw := &models.RawProduct{}

	raw.Name = strings.TrimSpace(root.Find("#productTitle").Text())
	if raw.Name == "" {
		return nil, models.NewParseError(doc.URL, "name")
	}

	raw.PriceText = p.extractPrice(root)
	if raw.PriceText == "" {
		return nil, models.NewParseError(doc.URL, "price")
	}

	raw.Brand = p.extractBrand(root)
	raw.OriginalPriceText = strings.TrimSpace(
		root.Find(".a-price.a-text-price .a-offscreen").First().Text())
	raw.Description = p.extractDescription(root)
	raw.Images = p.extractImages(root)
	raw.Specs = p.extractSpecs(root)
	raw.Reviews = p.extractReviews(root)
	raw.RatingText = strings.TrimSpace(
		root.Find("span[data-hook=rating-out-of-text]").First().Text())
	raw.RatingCountText = strings.TrimSpace(
		root.Find("#acrCustomerReviewText").First().Text())
	raw.Available = p.extractAvailability(root)

	return raw, nil
}

func (p *AmazonParser) extractPrice(root *goquery.Document) string {
	for _, selector := range p.priceSelectors {
		priceText := strings.TrimSpace(root.Find(selector).First().Text())
		if priceText != "" {
			return priceText
		}
	}
	return ""
}

func (p *AmazonParser) extractBrand(root *goquery.Document) string {
	brand := root.Find("#bylineInfo").Text()
	brand = strings.TrimPrefix(brand, "Brand: ")
	brand = strings.TrimPrefix(brand, "Marke: ")
	brand = strings.TrimPrefix(brand, "Visit the ")
	brand = strings.TrimPrefix(brand, "Besuchen Sie den ")
	brand = strings.TrimSuffix(strings.TrimSpace(brand), " Store")
	brand = strings.TrimSuffix(brand, "-Store")
	return strings.TrimSpace(brand)
}

func (p *AmazonParser) extractDescription(root *goquery.Document) string {
	if desc := strings.TrimSpace(root.Find("#productDescription p").First().Text()); desc != "" {
		return desc
	}

	var bullets []string
	root.Find("#feature-bullets ul li span").Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			bullets = append(bullets, text)
		}
	})
	return strings.Join(bullets, " ")
}

func (p *AmazonParser) extractImages(root *goquery.Document) []models.RawImage {
	var images []models.RawImage

	root.Find("#altImages ul li img").Each(func(i int, s *goquery.Selection) {
		if src, exists := s.Attr("src"); exists && src != "" {
			// Thumbnails link to downscaled variants.
			fullSrc := strings.Replace(src, "_AC_US40_", "_AC_SL1500_", 1)
			images = append(images, models.RawImage{
				URL: fullSrc,
				Alt: strings.TrimSpace(s.AttrOr("alt", "")),
			})
		}
	})

	if len(images) == 0 {
		if main := root.Find("#landingImage"); main.Length() > 0 {
			if src, exists := main.Attr("src"); exists && src != "" {
				images = append(images, models.RawImage{
					URL: src,
					Alt: strings.TrimSpace(main.AttrOr("alt", "")),
				})
			}
		}
	}

	return images
}

func (p *AmazonParser) extractSpecs(root *goquery.Document) []models.RawSpec {
	var specs []models.RawSpec

	root.Find("#productDetails_techSpec_section_1 tr, #productDetails_detailBullets_sections1 tr").
		Each(func(i int, s *goquery.Selection) {
			name := strings.TrimSpace(s.Find("th").First().Text())
			value := strings.TrimSpace(s.Find("td").First().Text())
			if name != "" && value != "" {
				specs = append(specs, models.RawSpec{Name: name, Value: value})
			}
		})

	root.Find("#detailBullets_feature_div li").Each(func(i int, s *goquery.Selection) {
		spans := s.Find("span.a-list-item > span")
		if spans.Length() >= 2 {
			name := strings.TrimSpace(strings.TrimSuffix(
				strings.TrimSpace(spans.Eq(0).Text()), ":"))
			value := strings.TrimSpace(spans.Eq(1).Text())
			if name != "" && value != "" {
				specs = append(specs, models.RawSpec{Name: name, Value: value})
			}
		}
	})

	return specs
}

func (p *AmazonParser) extractReviews(root *goquery.Document) []models.RawReview {
	var reviews []models.RawReview

	root.Find("div[data-hook=review]").Each(func(i int, s *goquery.Selection) {
		rating := strings.TrimSpace(
			s.Find("i[data-hook=review-star-rating] span.a-icon-alt").First().Text())
		if rating == "" {
			rating = strings.TrimSpace(
				s.Find("[data-hook=review-star-rating]").First().Text())
		}
		comment := strings.TrimSpace(s.Find("span[data-hook=review-body]").First().Text())
		if rating == "" && comment == "" {
			return
		}
		reviews = append(reviews, models.RawReview{
			RatingText: rating,
			Comment:    comment,
			Author:     strings.TrimSpace(s.Find("span.a-profile-name").First().Text()),
			Date:       strings.TrimSpace(s.Find("span[data-hook=review-date]").First().Text()),
		})
	})

	return reviews
}

func (p *AmazonParser) extractAvailability(root *goquery.Document) bool {
	availability := strings.ToLower(strings.TrimSpace(
		root.Find("#availability span").First().Text()))
	if availability == "" {
		availability = strings.ToLower(strings.TrimSpace(
			root.Find("#availability").First().Text()))
	}

	if strings.Contains(availability, "in stock") ||
		strings.Contains(availability, "auf lager") {
		return true
	}
	if strings.Contains(availability, "unavailable") ||
		strings.Contains(availability, "out of stock") ||
		strings.Contains(availability, "nicht verfügbar") {
		return false
	}

	// No availability block but an active buy button still means orderable.
	return root.Find("#add-to-cart-button").Length() > 0
}
