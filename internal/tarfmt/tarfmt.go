// Package tarfmt holds the on-disk arithmetic of the tar format: block
// padding, per-entry footprints, and source-filename classification.
// Everything here is pure and must agree byte-for-byte with what
// archive/tar actually emits, since chunk accounting is done in terms
// of these numbers.
package tarfmt

import (
	"strings"

	"github.com/anjor/tarsplit/internal/constants"
)

// PaddingSize returns the bytes needed to pad size up to the next block
// boundary, zero when already aligned.
func PaddingSize(size int64) int64 {
	r := size % constants.TarBlockSize
	if r == 0 {
		return 0
	}
	return constants.TarBlockSize - r
}

// EntryFootprint is the accounting cost of a single entry: one header
// block plus the data padded to block alignment, with a floor of one
// data block. The floor means header-only entries (directories, links)
// are charged a data block they never occupy - a deliberate, slightly
// conservative overestimate that can only make chunks smaller than the
// configured maximum, never larger.
func EntryFootprint(size int64) int64 {
	data := size + PaddingSize(size)
	if data < constants.TarBlockSize {
		data = constants.TarBlockSize
	}
	return constants.TarHeaderSize + data
}

type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionXz
)

var compressionSuffixes = map[string]Compression{
	".tar.gz":  CompressionGzip,
	".tgz":     CompressionGzip,
	".tar.zst": CompressionZstd,
	".tar.xz":  CompressionXz,
	".txz":     CompressionXz,
}

// DetectCompression classifies a source filename by suffix. Anything
// unrecognized is treated as a plain uncompressed tar.
func DetectCompression(base string) Compression {
	lower := strings.ToLower(base)
	for suffix, compression := range compressionSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return compression
		}
	}
	return CompressionNone
}

// Stem strips the archive suffix (compression included) from a source
// filename, for embedding into chunk filenames.
func Stem(base string) string {
	lower := strings.ToLower(base)

	for suffix := range compressionSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return base[:len(base)-len(suffix)]
		}
	}
	if strings.HasSuffix(lower, ".tar") {
		return base[:len(base)-len(".tar")]
	}

	// not a recognized archive name - take everything before the last dot
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
