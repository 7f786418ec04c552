package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys_Patterns(t *testing.T) {
	keys := NewKeys("analytics")

	assert.Equal(t, "analytics:daily:views:2024-01-15", keys.DailyViews("2024-01-15"))
	assert.Equal(t, "analytics:daily:unique_visitors:2024-01-15", keys.DailyUniqueVisitors("2024-01-15"))
	assert.Equal(t, "analytics:daily:sales:2024-01-15", keys.DailySales("2024-01-15"))
	assert.Equal(t, "analytics:daily:sales_count:2024-01-15", keys.DailySalesCount("2024-01-15"))
	assert.Equal(t, "analytics:product:p1:views:2024-01-15", keys.ProductViews("p1", "2024-01-15"))
	assert.Equal(t, "analytics:product:p1:sales:2024-01-15", keys.ProductSales("p1", "2024-01-15"))
	assert.Equal(t, "analytics:realtime:active_users", keys.ActiveUsers())
	assert.Equal(t, "analytics:daily:top_products:2024-01-15", keys.DailyTopProducts("2024-01-15"))
	assert.Equal(t, "analytics:cache:sales_report:x", keys.Cache("sales_report:x"))
	assert.Equal(t, "analytics:cache:*", keys.CachePattern())
}

func TestKeys_DefaultNamespace(t *testing.T) {
	keys := NewKeys("")

	assert.Equal(t, "analytics", keys.Namespace())
}

func TestKeys_CustomNamespace(t *testing.T) {
	keys := NewKeys("staging")

	assert.Equal(t, "staging:daily:views:2024-01-15", keys.DailyViews("2024-01-15"))
	assert.Equal(t, "staging:cache:*", keys.CachePattern())
}
