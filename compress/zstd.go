package compress

// ZstdCompressor provides Zstandard compression, the best-ratio codec for
// spooled payloads that may sit on disk for a while.
//
// Two implementations exist behind build tags: the cgo-backed
// valyala/gozstd when cgo is available, and the pure-Go
// klauspost/compress/zstd otherwise. Both produce interchangeable frames.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
