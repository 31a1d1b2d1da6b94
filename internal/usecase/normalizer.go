package usecase

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pickpost/backend/internal/domain"
)

// stripAccents folds accented characters to their ASCII base so that
// "Café" and "cafe" compare equal as category tokens.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeCategory canonicalizes a raw category or preference value into a
// comparable token: trimmed, lower-cased, accents stripped. An empty result
// means "absent". Product categories and customer preferred-category go
// through this same function so comparisons stay case- and
// whitespace-insensitive.
func NormalizeCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		return s
	}
	return folded
}

// NormalizePrice coerces a raw price value into a numeric quantity.
// Non-numeric or missing input yields (0, false), meaning absent, never an
// error and never a default of zero. Absent prices sort after numeric prices
// and never fail a budget check.
func NormalizePrice(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NormalizeCatalogue builds the matcher's working copy of the catalogue:
// derived name/category/price fields computed per record, duplicate names
// dropped (first occurrence wins), and the whole set stable-sorted once by
// ascending price with unknown-priced records last. The derived name goes
// through the same canonicalization as category tokens, so substring checks
// against a normalized preference compare like with like. The input slice is
// not mutated.
func NormalizeCatalogue(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	seen := make(map[string]bool, len(products))

	for _, p := range products {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if seen[key] {
			continue
		}
		seen[key] = true

		p.NormName = NormalizeCategory(p.Name)
		p.NormCategory = NormalizeCategory(p.Category)
		p.PriceValue, p.PriceKnown = NormalizePrice(p.Price)
		out = append(out, p)
	}

	// Stable keeps catalogue order on price ties.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PriceKnown != b.PriceKnown {
			return a.PriceKnown
		}
		if !a.PriceKnown {
			return false
		}
		return a.PriceValue < b.PriceValue
	})

	return out
}
