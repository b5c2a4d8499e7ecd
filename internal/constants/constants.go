package constants

import (
	"os"
	"strconv"
)

const (
	// Classic ustar geometry: headers are one block, entry data is padded
	// out to whole blocks, an archive ends with two zero blocks.
	TarBlockSize  int64 = 512
	TarHeaderSize int64 = 512
	TarFooterSize       = 2 * TarBlockSize

	// Smallest archive worth operating on: one header block plus one data
	// block. Doubles as the floor for any planned chunk size.
	MinArchiveSize int64 = 1024

	// A requested chunk count must exceed this - splitting into this few
	// pieces is a degenerate use of the tool.
	MinChunkCount = 2
)

type Incomparable [0]func()

var LongTests bool
var VeryLongTests bool

func init() {
	VeryLongTests = isTruthy("TEST_TARSPLIT_VERY_LONG")
	LongTests = VeryLongTests || isTruthy("TEST_TARSPLIT_LONG")
}

func isTruthy(varname string) bool {
	envStr := os.Getenv(varname)
	if envStr != "" {
		if num, err := strconv.ParseUint(envStr, 10, 64); err != nil || num != 0 {
			return true
		}
	}
	return false
}

var PerformSanityChecks = true
