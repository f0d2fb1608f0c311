package store

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductListQueryNoFilters(t *testing.T) {
	query, args := productListQuery(ProductFilter{}, 0)

	assert.Contains(t, query, "WHERE p.is_active")
	assert.Contains(t, query, "ORDER BY p.id")
	assert.NotContains(t, query, "category_id = $")
	assert.Empty(t, args)
}

func TestProductListQueryCategory(t *testing.T) {
	query, args := productListQuery(ProductFilter{}, 42)

	assert.Contains(t, query, "p.category_id = $1")
	assert.Equal(t, []interface{}{int64(42)}, args)
}

func TestProductListQueryUnresolvedCategoryDropsFilter(t *testing.T) {
	// An unresolved slug resolves to category id 0; the listing must fall
	// back to the unfiltered active set rather than an empty result.
	query, args := productListQuery(ProductFilter{CategorySlug: "nonexistent-slug"}, 0)

	assert.NotContains(t, query, "category_id")
	assert.Empty(t, args)
}

func TestProductListQueryPriceRange(t *testing.T) {
	min := decimal.RequireFromString("100")
	max := decimal.RequireFromString("500")

	query, args := productListQuery(ProductFilter{MinPrice: &min, MaxPrice: &max}, 0)

	assert.Contains(t, query, "p.price >= $1")
	assert.Contains(t, query, "p.price <= $2")
	assert.Len(t, args, 2)
}

func TestProductListQueryAllFilters(t *testing.T) {
	min := decimal.RequireFromString("50")
	f := ProductFilter{
		Search:   "solitaire",
		Material: "gold",
		Gemstone: "diamond",
		MinPrice: &min,
	}

	query, args := productListQuery(f, 3)

	assert.Len(t, args, 5)
	assert.Contains(t, query, "p.category_id = $1")
	assert.Contains(t, query, "p.price >= $2")
	assert.Contains(t, query, "unnest(p.materials)")
	assert.Contains(t, query, "unnest(p.gemstones)")
	assert.Contains(t, query, "p.name ILIKE")
	assert.Contains(t, query, "p.description ILIKE")

	// The search argument is bound once and referenced by both columns.
	assert.Equal(t, 2, strings.Count(query, "$5"))
}
