package datatable

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// CompressionType identifies a file's compression scheme, detected from
// its extension, grounded in the teacher's compression.go
// CompressionFactory.DetectCompressionType.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionGZ
	CompressionBZ2
	CompressionXZ
	CompressionZSTD
)

const (
	extGZ   = ".gz"
	extBZ2  = ".bz2"
	extXZ   = ".xz"
	extZSTD = ".zst"
)

// DetectCompressionType inspects path's extension to pick a decompressor.
func DetectCompressionType(path string) CompressionType {
	path = strings.ToLower(path)
	switch {
	case strings.HasSuffix(path, extGZ):
		return CompressionGZ
	case strings.HasSuffix(path, extBZ2):
		return CompressionBZ2
	case strings.HasSuffix(path, extXZ):
		return CompressionXZ
	case strings.HasSuffix(path, extZSTD):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// decompressingReader wraps r with a decompression reader appropriate for
// typ, grounded in the teacher's compressionHandlerImpl.CreateReader. The
// core reader never streams from a non-seekable decompressor: LoadFile
// drains the result fully into memory, since chunk boundaries need random
// byte-offset access.
func decompressingReader(r io.Reader, typ CompressionType) (io.Reader, func() error, error) {
	switch typ {
	case CompressionNone:
		return r, func() error { return nil }, nil
	case CompressionGZ:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("datatable: gzip reader: %w", err)
		}
		return gz, gz.Close, nil
	case CompressionBZ2:
		return bzip2.NewReader(r), func() error { return nil }, nil
	case CompressionXZ:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("datatable: xz reader: %w", err)
		}
		return xzr, func() error { return nil }, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("datatable: zstd reader: %w", err)
		}
		return dec, func() error { dec.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedCompression, typ)
	}
}

// LoadFile reads path fully into memory, transparently decompressing it
// if its extension indicates gzip/bzip2/xz/zstd, and returns a
// ReaderConfig seeded with [0, len(data)) and a mean-line-length estimate
// ready to pass to NewReader. cfg is used as a base (NThreads, Delimiter,
// HasHeader, etc. carry through); its SOF/EOF/MeanLineLen are overwritten.
func LoadFile(path string, cfg ReaderConfig) (data []byte, outCfg ReaderConfig, cleanup func() error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cfg, nil, err
	}
	defer f.Close()

	reader, closeFn, err := decompressingReader(f, DetectCompressionType(path))
	if err != nil {
		return nil, cfg, nil, err
	}
	defer closeFn()

	data, err = io.ReadAll(reader)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("datatable: reading %s: %w", path, err)
	}

	cfg.SOF = 0
	cfg.EOF = int64(len(data))
	cfg.MeanLineLen = estimateMeanLineLen(data, 0, cfg.EOF)

	return data, cfg, func() error { return nil }, nil
}
