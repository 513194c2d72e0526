package redis

// Key layout. Every key this service owns lives under the natowatch: prefix
// so a shared Redis instance stays navigable.
const (
	// KeyPrefixLease is the prefix for per-scope scrape leases.
	KeyPrefixLease = "natowatch:lease:"
	// KeyPrefixList is the prefix for cached opportunity listings.
	KeyPrefixList = "natowatch:list:"
)

// LeaseKey returns the lease key for one (nato_body, category) scope.
func LeaseKey(natoBody, category string) string {
	return KeyPrefixLease + natoBody + ":" + category
}

// ListKey returns the cache key for one canonical listing query.
func ListKey(query string) string {
	return KeyPrefixList + query
}
