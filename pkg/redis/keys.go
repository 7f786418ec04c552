package redis

import "fmt"

// DateLayout is the calendar-date format used in every dated key.
const DateLayout = "2006-01-02"

// Keys builds the namespaced key set shared by the tracking write path and any
// reporting layer reading the same store. The patterns below are a wire
// contract; changing them silently breaks external consumers.
type Keys struct {
	ns string
}

// NewKeys creates a key builder for the given namespace (e.g. "analytics")
func NewKeys(namespace string) *Keys {
	if namespace == "" {
		namespace = "analytics"
	}
	return &Keys{ns: namespace}
}

// Namespace returns the configured key namespace
func (k *Keys) Namespace() string {
	return k.ns
}

// DailyViews is the site-wide view counter for one calendar date
func (k *Keys) DailyViews(date string) string {
	return fmt.Sprintf("%s:daily:views:%s", k.ns, date)
}

// DailyUniqueVisitors is the set of user ids seen on one calendar date
func (k *Keys) DailyUniqueVisitors(date string) string {
	return fmt.Sprintf("%s:daily:unique_visitors:%s", k.ns, date)
}

// DailySales is the floating sales-amount accumulator for one calendar date
func (k *Keys) DailySales(date string) string {
	return fmt.Sprintf("%s:daily:sales:%s", k.ns, date)
}

// DailySalesCount is the integer sales counter for one calendar date
func (k *Keys) DailySalesCount(date string) string {
	return fmt.Sprintf("%s:daily:sales_count:%s", k.ns, date)
}

// ProductViews is the per-product view counter for one calendar date
func (k *Keys) ProductViews(productID, date string) string {
	return fmt.Sprintf("%s:product:%s:views:%s", k.ns, productID, date)
}

// ProductSales is the per-product sales accumulator for one calendar date
func (k *Keys) ProductSales(productID, date string) string {
	return fmt.Sprintf("%s:product:%s:sales:%s", k.ns, productID, date)
}

// ActiveUsers is the short-lived set of recently active user ids
func (k *Keys) ActiveUsers() string {
	return fmt.Sprintf("%s:realtime:active_users", k.ns)
}

// DailyTopProducts is the sorted set ranking products by views for one date
func (k *Keys) DailyTopProducts(date string) string {
	return fmt.Sprintf("%s:daily:top_products:%s", k.ns, date)
}

// Cache is the report-cache entry for a caller-chosen key
func (k *Keys) Cache(key string) string {
	return fmt.Sprintf("%s:cache:%s", k.ns, key)
}

// CachePattern matches every report-cache entry in this namespace
func (k *Keys) CachePattern() string {
	return fmt.Sprintf("%s:cache:*", k.ns)
}
