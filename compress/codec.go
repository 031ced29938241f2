package compress

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/fluxline/errs"
)

// Compressor compresses a complete payload.
//
// Memory management:
//   - Returned slice is owned by the caller
//   - Input slice is not modified
//   - Internal buffers may be pooled for reuse
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload previously produced by the matching
// Compressor. Corrupted or mismatched input returns an error.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// Type identifies a compression codec. It round-trips through YAML as a
// lower-case name, so it can appear directly in configuration files.
type Type uint8

const (
	TypeNone Type = 0x1 // TypeNone applies no compression.
	TypeGzip Type = 0x2 // TypeGzip is RFC 1952 gzip (HTTP write bodies).
	TypeZstd Type = 0x3 // TypeZstd is Zstandard.
	TypeS2   Type = 0x4 // TypeS2 is S2 (Snappy-compatible).
	TypeLZ4  Type = 0x5 // TypeLZ4 is LZ4 block compression.
)

// String returns the lower-case codec name.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeGzip:
		return "gzip"
	case TypeZstd:
		return "zstd"
	case TypeS2:
		return "s2"
	case TypeLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// ParseType resolves a codec name to its Type. The empty string resolves
// to TypeNone so absent configuration keys behave as "no compression".
func ParseType(name string) (Type, error) {
	switch name {
	case "", "none":
		return TypeNone, nil
	case "gzip":
		return TypeGzip, nil
	case "zstd":
		return TypeZstd, nil
	case "s2":
		return TypeS2, nil
	case "lz4":
		return TypeLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidCompression, name)
	}
}

// New returns the codec implementation for t.
func New(t Type) (Codec, error) {
	switch t {
	case TypeNone:
		return NewNoOpCompressor(), nil
	case TypeGzip:
		return NewGzipCompressor(), nil
	case TypeZstd:
		return NewZstdCompressor(), nil
	case TypeS2:
		return NewS2Compressor(), nil
	case TypeLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", errs.ErrInvalidCompression, uint8(t))
	}
}

// MarshalYAML implements yaml.Marshaler.
func (t Type) MarshalYAML() (any, error) {
	return t.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}

	parsed, err := ParseType(name)
	if err != nil {
		return err
	}
	*t = parsed

	return nil
}
