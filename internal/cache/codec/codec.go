// Package codec defines the serialization boundary between cached snapshots
// and the byte-level cache providers. The same codec instance must be used on
// the write and read paths so that snapshots round-trip without drift.
package codec

// Codec encodes/decodes values V to []byte for cache storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
