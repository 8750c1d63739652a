package domain

// KeyValueStore is the durable, synchronous, string-keyed storage surface.
// Values are opaque strings (JSON in practice). Get reports ok=false for a
// missing key; a missing key is not an error.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}
