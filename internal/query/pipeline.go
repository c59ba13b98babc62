package query

import (
	"sort"
	"strings"

	"ordersystem/internal/models"
)

// Sortable property names, matched case-insensitively. Any other value
// leaves the incoming order untouched.
const (
	sortByName  = "name"
	sortByPrice = "price"
)

// Apply runs the catalog query stages in a fixed order: filter, then sort,
// then paginate. Pagination must operate on the post-filter, post-sort view,
// so the stage order is not configurable. Missing or nonsensical option
// values degrade to a no-op; Apply never fails and never mutates its input.
func Apply(products []models.Product, opts Options) []models.Product {
	result := applyFilter(products, opts)
	result = applySort(result, opts)
	return applyPagination(result, opts)
}

// applyFilter keeps products inside the inclusive price bounds. When the
// minimum exceeds the maximum the result is simply empty; the bounds are
// never validated against each other.
func applyFilter(products []models.Product, opts Options) []models.Product {
	if opts.MinimumPrice == nil && opts.MaximumPrice == nil {
		return products
	}

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if opts.MinimumPrice != nil && p.Price < *opts.MinimumPrice {
			continue
		}
		if opts.MaximumPrice != nil && p.Price > *opts.MaximumPrice {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func applySort(products []models.Product, opts Options) []models.Product {
	var less func(a, b models.Product) bool

	switch strings.ToLower(opts.OrderByPropertyName) {
	case sortByName:
		less = func(a, b models.Product) bool { return a.Name < b.Name }
	case sortByPrice:
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	default:
		return products
	}

	sorted := make([]models.Product, len(products))
	copy(sorted, products)
	sort.Slice(sorted, func(i, j int) bool {
		if opts.IsDescending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// applyPagination windows the sequence when both a page number and a page
// size are present; either alone is ignored. Page numbers are 1-based, and
// a page at or past the end yields an empty result.
func applyPagination(products []models.Product, opts Options) []models.Product {
	if opts.PageNumber == nil || opts.PageSize == nil {
		return products
	}

	skip := (*opts.PageNumber - 1) * *opts.PageSize
	take := *opts.PageSize
	if skip < 0 || take <= 0 || skip >= len(products) {
		return []models.Product{}
	}

	end := skip + take
	if end > len(products) {
		end = len(products)
	}
	return products[skip:end]
}
