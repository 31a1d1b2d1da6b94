package domain

// Product represents one catalogue entry as ingested from a CSV or a scraped
// catalogue text. Name is required; everything else is optional and degrades
// to "absent" rather than failing.
type Product struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Price    string `json:"price,omitempty"` // raw value as ingested, e.g. "12.00" or "call for price"
	SKU      string `json:"sku,omitempty"`
	URL      string `json:"url,omitempty"`

	// Derived during catalogue normalization; read-only afterwards.
	NormName     string  `json:"-"`
	NormCategory string  `json:"-"`
	PriceValue   float64 `json:"-"`
	PriceKnown   bool    `json:"-"`
}

// Customer represents one recipient row. Email and Name are required;
// PreferredCategory and MaxBudget are free-form and normalized at match time.
type Customer struct {
	Email             string `json:"email"`
	Name              string `json:"name"`
	PreferredCategory string `json:"preferredCategory,omitempty"`
	MaxBudget         string `json:"maxBudget,omitempty"`
}

// Recommendation is a product projected down to the fields an email needs.
// Price is nil when the catalogue price could not be parsed.
type Recommendation struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	SKU      string   `json:"sku,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// MatchResult pairs one customer with its ordered recommendation list.
// Ordering within Recommendations is meaningful (ascending price, catalogue
// order on ties) and must be preserved downstream.
type MatchResult struct {
	Customer        Customer         `json:"customer"`
	Recommendations []Recommendation `json:"recommendations"`
}
