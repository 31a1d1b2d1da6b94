package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pickpost/backend/internal/domain"
)

// maxScrapedProducts caps catalogue extraction from free-form text.
const maxScrapedProducts = 1000

var (
	// priceGuessPattern finds the first price-looking number in a line,
	// optionally preceded by a currency symbol. Comma decimals are accepted.
	priceGuessPattern = regexp.MustCompile(`(?:£|\$|€)?\s?(\d{1,4}(?:[.,]\d{2})?)`)

	// lettersRunPattern requires a line to contain at least one run of three
	// letters before it is treated as a product entry.
	lettersRunPattern = regexp.MustCompile(`[A-Za-z]{3,}`)
)

// categoryKeywords are scanned in order; the first whole-word hit becomes the
// guessed category for a scraped line.
var categoryKeywords = []string{"Pen", "Ink", "Paper", "Notebook", "Accessory", "Set", "Refill"}

var categoryPatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(categoryKeywords))
	for i, kw := range categoryKeywords {
		patterns[i] = regexp.MustCompile(`(?i)\b` + kw + `\b`)
	}
	return patterns
}()

// ParseCatalogueText heuristically extracts a product table from catalogue
// layout text (one product per line, as extracted from a PDF). Each
// qualifying line becomes a product whose name is the whole line, with a
// guessed price and category. Duplicates by name are dropped, first
// occurrence winning, and output is capped at 1000 rows. The returned log
// lines describe what the scrape saw, for display alongside the preview.
func ParseCatalogueText(r io.Reader) ([]domain.Product, []string, error) {
	var (
		products []domain.Product
		logs     []string
		seen     = make(map[string]bool)
		lineNo   int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !lettersRunPattern.MatchString(line) {
			continue
		}

		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true

		products = append(products, domain.Product{
			Name:     line,
			Category: guessCategory(line),
			Price:    guessPrice(line),
		})

		if len(products) >= maxScrapedProducts {
			logs = append(logs, fmt.Sprintf("stopped at %d products (cap reached)", maxScrapedProducts))
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, logs, fmt.Errorf("scan catalogue text: %w", err)
	}

	logs = append(logs, fmt.Sprintf("lines scanned: %d", lineNo),
		fmt.Sprintf("products extracted: %d", len(products)))
	return products, logs, nil
}

// guessPrice returns the first price-looking token of a line as a normalized
// decimal string, or "" when the line has none.
func guessPrice(line string) string {
	m := priceGuessPattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	v := strings.ReplaceAll(m[1], ",", ".")
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		return ""
	}
	return v
}

// guessCategory returns the first category keyword appearing as a whole word
// in the line, or "" when none match.
func guessCategory(line string) string {
	for i, p := range categoryPatterns {
		if p.MatchString(line) {
			return categoryKeywords[i]
		}
	}
	return ""
}
