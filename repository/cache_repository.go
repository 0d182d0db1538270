package repository

// CacheRepository stores encoded analysis results by request key.
// Get reports a miss, or any backend failure, as false.
type CacheRepository interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}
