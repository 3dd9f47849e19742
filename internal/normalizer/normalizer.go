// Package normalizer converts the raw per-source field bag into the
// canonical product record.
package normalizer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopsight/product-scraper/internal/models"
)

var (
	numberPattern = regexp.MustCompile(`[0-9][0-9.,\s]*`)
	digitsPattern = regexp.MustCompile(`[0-9][0-9.,]*`)
)

// Normalize builds the canonical product from one raw extraction. The
// current price is mandatory: an unparsable price text is a parse_failed
// error, never a defaulted zero.
func Normalize(raw *models.RawProduct, src models.Source, doc *models.Document) (*models.Product, error) {
	current, currency, err := ParsePrice(raw.PriceText)
	if err != nil {
		return nil, models.NewParseError(doc.URL, "price")
	}

	price := models.Price{Current: current, Currency: currency}
	if raw.OriginalPriceText != "" {
		if original, _, err := ParsePrice(raw.OriginalPriceText); err == nil {
			price.Original = &original
		}
	}

	return &models.Product{
		ID:             models.ProductID(src, doc.URL),
		Name:           strings.TrimSpace(raw.Name),
		Brand:          strings.TrimSpace(raw.Brand),
		Price:          price,
		Description:    strings.TrimSpace(raw.Description),
		Images:         normalizeImages(raw.Images),
		Specifications: normalizeSpecs(raw.Specs),
		Reviews:        normalizeReviews(raw.Reviews),
		Rating:         normalizeRating(raw),
		Availability:   raw.Available,
		URL:            doc.URL,
		Source:         src,
		ScrapedAt:      time.Now().UTC(),
	}, nil
}

// ParsePrice extracts a numeric amount and an ISO currency code from a
// locale-formatted price string such as "$1,299.99", "1.299,99 €" or
// "EUR 29,95".
func ParsePrice(text string) (float64, string, error) {
	currency := detectCurrency(text)

	match := numberPattern.FindString(text)
	if match == "" {
		return 0, "", fmt.Errorf("no numeric value in %q", text)
	}
	match = strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, match)
	match = strings.Trim(match, ".,")

	value, err := strconv.ParseFloat(decimalize(match), 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse %q: %w", text, err)
	}
	if value < 0 {
		return 0, "", fmt.Errorf("negative price %q", text)
	}
	return value, currency, nil
}

// decimalize rewrites a localized numeric token into Go float syntax.
// When both separators appear, the rightmost one is the decimal mark.
func decimalize(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			return strings.ReplaceAll(s, ",", "")
		}
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastDot >= 0:
		if strings.Count(s, ".") == 1 && len(s)-lastDot-1 != 3 {
			return s
		}
		// A lone dot with three trailing digits reads as a thousands
		// separator ("1.299" is 1299, not 1.299).
		return strings.ReplaceAll(s, ".", "")
	default:
		return s
	}
}

func detectCurrency(text string) string {
	switch {
	case strings.Contains(text, "€") || strings.Contains(text, "EUR"):
		return "EUR"
	case strings.Contains(text, "£") || strings.Contains(text, "GBP"):
		return "GBP"
	case strings.Contains(text, "$") || strings.Contains(text, "USD"):
		return "USD"
	default:
		return "USD"
	}
}

func normalizeImages(raw []models.RawImage) []models.Image {
	images := make([]models.Image, 0, len(raw))
	for _, img := range raw {
		url := strings.TrimSpace(img.URL)
		if url == "" {
			continue
		}
		images = append(images, models.Image{URL: url, Alt: strings.TrimSpace(img.Alt)})
	}
	return images
}

// normalizeSpecs trims pairs and de-duplicates by name. The last value
// wins but the first occurrence keeps its position, so document order is
// preserved against repeated table rows.
func normalizeSpecs(raw []models.RawSpec) []models.Specification {
	specs := make([]models.Specification, 0, len(raw))
	index := make(map[string]int, len(raw))

	for _, spec := range raw {
		name := strings.TrimSpace(spec.Name)
		value := strings.TrimSpace(spec.Value)
		if name == "" || value == "" {
			continue
		}
		if i, seen := index[name]; seen {
			specs[i].Value = value
			continue
		}
		index[name] = len(specs)
		specs = append(specs, models.Specification{Name: name, Value: value})
	}

	return specs
}

func normalizeReviews(raw []models.RawReview) []models.Review {
	reviews := make([]models.Review, 0, len(raw))
	for _, r := range raw {
		rating, ok := parseLeadingFloat(r.RatingText)
		if !ok {
			rating = 0
		}
		reviews = append(reviews, models.Review{
			Rating:  clampRating(rating),
			Comment: strings.TrimSpace(r.Comment),
			Author:  strings.TrimSpace(r.Author),
			Date:    strings.TrimSpace(r.Date),
		})
	}
	return reviews
}

// normalizeRating recomputes the average from the reviews whose rating
// text parsed. Reviews with garbled rating text are kept on the record but
// never counted into the mean. With no parseable review ratings the
// source-reported aggregate is used verbatim.
func normalizeRating(raw *models.RawProduct) models.Rating {
	rating := models.Rating{}

	var sum float64
	parsed := 0
	for _, r := range raw.Reviews {
		if v, ok := parseLeadingFloat(r.RatingText); ok {
			sum += clampRating(v)
			parsed++
		}
	}

	if parsed > 0 {
		rating.Average = roundToTenth(sum / float64(parsed))
	} else if avg, ok := parseLeadingFloat(raw.RatingText); ok {
		rating.Average = roundToTenth(clampRating(avg))
	}

	if count, ok := parseLeadingInt(raw.RatingCountText); ok {
		rating.Count = count
	}
	if rating.Count < 0 {
		rating.Count = 0
	}

	return rating
}

// parseLeadingFloat reads the first decimal number out of text like
// "4.3 out of 5" or "4,3 von 5 Sternen".
func parseLeadingFloat(text string) (float64, bool) {
	match := digitsPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(decimalize(strings.Trim(match, ".,")), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func parseLeadingInt(text string) (int, bool) {
	value, ok := parseLeadingFloat(text)
	if !ok {
		return 0, false
	}
	return int(value), true
}

func clampRating(v float64) float64 {
	return math.Min(math.Max(v, 0), 5)
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
