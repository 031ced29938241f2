// Package compress provides the compression codecs used by the fluxline
// transport and spool layers.
//
// Line-protocol payloads are plain text with heavy key repetition across
// lines, so they compress extremely well. Compression is applied at the
// payload level: the client gzips HTTP write bodies (the only encoding
// InfluxDB accepts on /write), and the spool compresses batch payloads at
// rest with a configurable codec.
//
// # Codecs
//
//   - None: no compression (spool debugging, tiny batches)
//   - Gzip: the HTTP write-body encoding; also valid for the spool
//   - Zstd: best ratio for spooled payloads (cgo gozstd when available,
//     pure-Go otherwise)
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
//
// # Interfaces
//
// Codec combines Compressor and Decompressor:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
// All implementations are stateless values, safe for concurrent use, and
// treat empty input as empty output. Select one by name with ParseType
// and construct it with New; Type round-trips through YAML for use in
// configuration files.
package compress
