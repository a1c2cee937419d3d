package providers

const cacheKeyPrefix = "clinic:cache:"

// ResourceListKey is the cache key of a resource's full list
func ResourceListKey(resource string) string {
	return cacheKeyPrefix + resource + ":list"
}

// ResourceItemKey is the cache key of a single entity
func ResourceItemKey(resource, id string) string {
	return cacheKeyPrefix + resource + ":item:" + id
}

// ResourcePattern matches every cached key of a resource
func ResourcePattern(resource string) string {
	return cacheKeyPrefix + resource + ":*"
}
