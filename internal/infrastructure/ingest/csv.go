// Package ingest turns uploaded tabular files and scraped catalogue text into
// the normalized product and customer tables the matcher consumes. It owns
// the upstream half of the matcher's contract: required-field rows are
// dropped or rejected here so they never reach the core.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pickpost/backend/internal/domain"
)

// productColumns are the catalogue columns the matcher knows about. Missing
// columns are filled with empty values; extra columns are ignored.
var productColumns = []string{"name", "category", "price", "sku", "url"}

// requiredCustomerColumns must be present in the customers CSV header.
var requiredCustomerColumns = []string{"email", "name"}

// ParseProducts reads a product catalogue CSV. Rows without a name are
// dropped and duplicate names are collapsed, first occurrence winning, so
// the output satisfies the matcher's input contract.
func ParseProducts(r io.Reader) ([]domain.Product, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("read products csv: %w", err)
	}

	idx := columnIndex(header)
	products := make([]domain.Product, 0, len(rows))
	seen := make(map[string]bool, len(rows))

	for _, row := range rows {
		name := strings.TrimSpace(cell(row, idx, "name"))
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		products = append(products, domain.Product{
			Name:     name,
			Category: strings.TrimSpace(cell(row, idx, "category")),
			Price:    strings.TrimSpace(cell(row, idx, "price")),
			SKU:      strings.TrimSpace(cell(row, idx, "sku")),
			URL:      strings.TrimSpace(cell(row, idx, "url")),
		})
	}

	return products, nil
}

// ParseCustomers reads a customer CSV. The email and name columns must exist;
// rows where either value is blank are dropped before the matcher sees them.
func ParseCustomers(r io.Reader) ([]domain.Customer, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("read customers csv: %w", err)
	}

	idx := columnIndex(header)
	var missing []string
	for _, col := range requiredCustomerColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: customers file is missing %s",
			domain.ErrMissingColumn, strings.Join(missing, ", "))
	}

	customers := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		email := strings.TrimSpace(cell(row, idx, "email"))
		name := strings.TrimSpace(cell(row, idx, "name"))
		if email == "" || name == "" {
			continue
		}

		customers = append(customers, domain.Customer{
			Email:             email,
			Name:              name,
			PreferredCategory: strings.TrimSpace(cell(row, idx, "preferred_category")),
			MaxBudget:         strings.TrimSpace(cell(row, idx, "max_budget")),
		})
	}

	return customers, nil
}

// readTable reads a whole CSV into header + data rows, tolerating ragged rows.
func readTable(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

// columnIndex maps normalized header names to their positions. The first
// occurrence of a duplicated header wins. A UTF-8 BOM on the first header
// cell is stripped.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

// cell returns the named column's value in a row, or "" when the column is
// absent or the row is too short.
func cell(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
