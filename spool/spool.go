// Package spool buffers write payloads on disk when the database is
// unreachable, for replay once it recovers.
//
// Each payload becomes one segment file named <seq>.seg. A segment holds a
// fixed little-endian header (magic, version, codec type, CRC32 checksum,
// payload length) followed by the compressed payload. The checksum covers
// the compressed bytes, so a truncated or bit-rotted segment is detected
// before replay. Segments replay oldest-first and are deleted only after
// the replay callback succeeds.
package spool

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/arloliu/fluxline/compress"
	"github.com/arloliu/fluxline/errs"
	"github.com/arloliu/fluxline/internal/options"
)

const (
	segmentSuffix  = ".seg"
	segmentVersion = 1

	// header: magic(4) + version(1) + codec(1) + crc32(4) + length(4)
	headerSize = 14

	// DefaultMaxBytes caps total spool size at 256MiB; oldest segments are
	// evicted first when the cap is exceeded.
	DefaultMaxBytes = 256 * 1024 * 1024
)

// segmentMagic marks the start of every spool segment file.
var segmentMagic = [4]byte{'F', 'L', 'X', 'S'}

// Spool is a bounded on-disk buffer of compressed write payloads.
// All methods are safe for concurrent use.
type Spool struct {
	mu       sync.Mutex
	dir      string
	ctype    compress.Type
	codec    compress.Codec
	maxBytes int64
	logger   *slog.Logger
	seq      uint64
	closed   bool
}

// Option represents a functional option for configuring a Spool.
type Option = options.Option[*Spool]

// WithCodec selects the compression codec for payloads at rest.
// The default is Zstd.
func WithCodec(t compress.Type) Option {
	return options.New(func(s *Spool) error {
		codec, err := compress.New(t)
		if err != nil {
			return err
		}
		s.ctype = t
		s.codec = codec

		return nil
	})
}

// WithMaxBytes bounds the total size of spooled segments. When a Put
// pushes the spool past the bound, the oldest segments are evicted until
// it fits. Values <= 0 are rejected.
func WithMaxBytes(n int64) Option {
	return options.New(func(s *Spool) error {
		if n <= 0 {
			return fmt.Errorf("%w: max bytes must be positive", errs.ErrInvalidConfig)
		}
		s.maxBytes = n

		return nil
	})
}

// WithLogger sets the logger for eviction and corruption notices.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(s *Spool) {
		if logger != nil {
			s.logger = logger
		}
	})
}

// Open creates or reopens a spool rooted at dir.
//
// The directory is created if missing. Existing segments are preserved;
// the sequence counter resumes past the newest one so replay order stays
// consistent across restarts.
func Open(dir string, opts ...Option) (*Spool, error) {
	s := &Spool{
		dir:      dir,
		ctype:    compress.TypeZstd,
		codec:    compress.NewZstdCompressor(),
		maxBytes: DefaultMaxBytes,
		logger:   slog.Default(),
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidConfig, err)
	}

	names, err := s.segmentNames()
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		// Resume numbering after the newest existing segment.
		base := filepath.Base(names[len(names)-1])
		if last, err := strconv.ParseUint(strings.TrimSuffix(base, segmentSuffix), 10, 64); err == nil {
			s.seq = last
		}
	}

	return s, nil
}

// Put compresses payload and appends it as a new segment, evicting the
// oldest segments if the spool would exceed its size bound.
func (s *Spool) Put(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errs.ErrSpoolClosed
	}

	compressed, err := s.codec.Compress(payload)
	if err != nil {
		return fmt.Errorf("spool compress: %w", err)
	}

	buf := make([]byte, headerSize+len(compressed))
	copy(buf[0:4], segmentMagic[:])
	buf[4] = segmentVersion
	buf[5] = byte(s.ctype)
	binary.LittleEndian.PutUint32(buf[6:10], crc32.ChecksumIEEE(compressed))
	binary.LittleEndian.PutUint32(buf[10:14], uint32(len(compressed)))
	copy(buf[headerSize:], compressed)

	s.seq++
	name := filepath.Join(s.dir, fmt.Sprintf("%020d%s", s.seq, segmentSuffix))
	if err := os.WriteFile(name, buf, 0o644); err != nil {
		return fmt.Errorf("spool write: %w", err)
	}

	return s.enforceLimit()
}

// Drain replays spooled payloads oldest-first through fn, deleting each
// segment after fn succeeds. It stops at the first fn error or context
// cancellation and returns the number of segments replayed. Corrupt
// segments are logged, deleted and skipped.
func (s *Spool) Drain(ctx context.Context, fn func(ctx context.Context, payload []byte) error) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errs.ErrSpoolClosed
	}

	names, err := s.segmentNames()
	if err != nil {
		return 0, err
	}

	replayed := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return replayed, err
		}

		payload, err := s.readSegment(name)
		if err != nil {
			s.logger.Warn("dropping corrupt spool segment",
				slog.String("segment", filepath.Base(name)),
				slog.String("error", err.Error()))
			_ = os.Remove(name)

			continue
		}

		if err := fn(ctx, payload); err != nil {
			return replayed, err
		}

		_ = os.Remove(name)
		replayed++
	}

	return replayed, nil
}

// Len returns the number of spooled segments.
func (s *Spool) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.segmentNames()
	if err != nil {
		return 0
	}

	return len(names)
}

// Size returns the total size in bytes of all spooled segments.
func (s *Spool) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	size, _ := s.totalSize()

	return size
}

// Close marks the spool closed. Spooled segments stay on disk for the
// next Open.
func (s *Spool) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true

	return nil
}

func (s *Spool) readSegment(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: short header", errs.ErrSpoolCorrupt)
	}
	if [4]byte(data[0:4]) != segmentMagic {
		return nil, fmt.Errorf("%w: bad magic", errs.ErrSpoolCorrupt)
	}
	if data[4] != segmentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errs.ErrSpoolCorrupt, data[4])
	}

	codec, err := compress.New(compress.Type(data[5]))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrSpoolCorrupt, err)
	}

	sum := binary.LittleEndian.Uint32(data[6:10])
	length := binary.LittleEndian.Uint32(data[10:14])
	body := data[headerSize:]

	if uint32(len(body)) != length {
		return nil, fmt.Errorf("%w: length mismatch", errs.ErrSpoolCorrupt)
	}
	if crc32.ChecksumIEEE(body) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", errs.ErrSpoolCorrupt)
	}

	payload, err := codec.Decompress(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrSpoolCorrupt, err)
	}

	return payload, nil
}

// segmentNames returns the segment paths sorted oldest-first. Callers
// hold s.mu.
func (s *Spool) segmentNames() ([]string, error) {
	names, err := filepath.Glob(filepath.Join(s.dir, "*"+segmentSuffix))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	return names, nil
}

func (s *Spool) totalSize() (int64, error) {
	names, err := s.segmentNames()
	if err != nil {
		return 0, err
	}

	var size int64
	for _, name := range names {
		if info, err := os.Stat(name); err == nil {
			size += info.Size()
		}
	}

	return size, nil
}

// enforceLimit evicts oldest segments until the spool fits maxBytes.
// Callers hold s.mu.
func (s *Spool) enforceLimit() error {
	size, err := s.totalSize()
	if err != nil || size <= s.maxBytes {
		return err
	}

	names, err := s.segmentNames()
	if err != nil {
		return err
	}

	for _, name := range names {
		if size <= s.maxBytes {
			break
		}

		info, err := os.Stat(name)
		if err != nil {
			continue
		}
		if err := os.Remove(name); err != nil {
			return err
		}
		size -= info.Size()

		s.logger.Warn("evicted oldest spool segment",
			slog.String("segment", filepath.Base(name)),
			slog.Int64("spool_bytes", size))
	}

	return nil
}
