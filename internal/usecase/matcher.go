package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pickpost/backend/internal/domain"
	"github.com/pickpost/backend/internal/observability"
)

// defaultMaxRecommendations is used when the caller's cap is non-positive.
const defaultMaxRecommendations = 3

// MatcherConfig holds configuration for the matcher service
type MatcherConfig struct {
	MaxRecommendations int
	Logger             *zap.Logger
}

// MatcherService selects up to N catalogue products per customer using
// rule-based preference and budget filtering. It is a pure transformation:
// no retries, no concurrency, no persisted state.
type MatcherService struct {
	maxRecommendations int
	logger             *zap.Logger
}

// NewMatcherService creates a new matcher service with the given configuration
func NewMatcherService(config MatcherConfig) *MatcherService {
	maxRecs := config.MaxRecommendations
	if maxRecs <= 0 {
		maxRecs = defaultMaxRecommendations
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MatcherService{
		maxRecommendations: maxRecs,
		logger:             logger,
	}
}

// Match pairs every customer with up to maxRecs recommended products.
//
// The catalogue is normalized and price-sorted exactly once, then each
// customer gets an independent filter/select walk over that shared sorted
// copy. Output order equals input customer order; recommendation order is
// ascending price with catalogue order on ties.
//
// A non-positive maxRecs falls back to the service default. A missing
// required field (product name, customer email/name) is a contract violation
// by the ingestion layer and aborts the whole call.
func (s *MatcherService) Match(
	ctx context.Context,
	products []domain.Product,
	customers []domain.Customer,
	maxRecs int,
) ([]domain.MatchResult, error) {
	defer func(start time.Time) {
		observability.MatchDuration.Observe(time.Since(start).Seconds())
	}(time.Now())

	if maxRecs <= 0 {
		maxRecs = s.maxRecommendations
	}

	if err := validateRequiredFields(products, customers); err != nil {
		return nil, err
	}

	catalogue := NormalizeCatalogue(products)

	results := make([]domain.MatchResult, 0, len(customers))
	for _, cust := range customers {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		recs := s.recommend(catalogue, cust, maxRecs)
		results = append(results, domain.MatchResult{
			Customer:        cust,
			Recommendations: recs,
		})
	}

	return results, nil
}

// recommend runs the per-customer filter/select walk over the pre-sorted
// catalogue.
func (s *MatcherService) recommend(catalogue []domain.Product, cust domain.Customer, maxRecs int) []domain.Recommendation {
	preferred := NormalizeCategory(cust.PreferredCategory)
	budget, hasBudget := NormalizePrice(cust.MaxBudget)

	candidates := catalogue

	// Preference filter: normalized category equality OR the preferred token
	// appearing as a substring of the normalized product name. Both sides go
	// through the same canonicalization, so accented preferences still match.
	// If nothing survives, the filter is discarded entirely so the customer
	// still gets generic picks.
	if preferred != "" {
		filtered := filterProducts(candidates, func(p domain.Product) bool {
			return p.NormCategory == preferred ||
				strings.Contains(p.NormName, preferred)
		})
		if len(filtered) == 0 {
			s.logger.Debug("preference matched nothing, falling back to full catalogue",
				zap.String("customer", cust.Email),
				zap.String("preferred", preferred))
			observability.MatchFallbacks.Inc()
		} else {
			candidates = filtered
		}
	}

	// Budget filter, inclusive boundary. An unknown price is presumed
	// affordable and always passes.
	if hasBudget {
		candidates = filterProducts(candidates, func(p domain.Product) bool {
			return !p.PriceKnown || p.PriceValue <= budget
		})
	}

	if len(candidates) > maxRecs {
		candidates = candidates[:maxRecs]
	}

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, p := range candidates {
		recs = append(recs, projectRecommendation(p))
	}
	return recs
}

// filterProducts returns the order-preserving subset of products satisfying keep.
func filterProducts(products []domain.Product, keep func(domain.Product) bool) []domain.Product {
	var out []domain.Product
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// projectRecommendation reduces a catalogue record to the fields an email needs.
func projectRecommendation(p domain.Product) domain.Recommendation {
	rec := domain.Recommendation{
		Name:     p.Name,
		Category: p.Category,
		SKU:      p.SKU,
		URL:      p.URL,
	}
	if p.PriceKnown {
		price := p.PriceValue
		rec.Price = &price
	}
	return rec
}

// validateRequiredFields surfaces upstream contract violations: rows with a
// missing required field must never reach the matcher.
func validateRequiredFields(products []domain.Product, customers []domain.Customer) error {
	for i, p := range products {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: product[%d].name", domain.ErrMissingRequiredField, i)
		}
	}
	for i, c := range customers {
		if strings.TrimSpace(c.Email) == "" {
			return fmt.Errorf("%w: customer[%d].email", domain.ErrMissingRequiredField, i)
		}
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: customer[%d].name", domain.ErrMissingRequiredField, i)
		}
	}
	return nil
}
