// Package plan converts the caller's splitting intent - an explicit
// maximum chunk size, or a desired chunk count - into the single byte
// threshold the chunk writer accumulates against.
package plan

import (
	"errors"
	"fmt"
	"math"

	"github.com/anjor/tarsplit/internal/constants"
	"github.com/anjor/tarsplit/internal/util/text"
)

// ErrInvalidConfiguration tags every planner failure: callers test with
// errors.Is and treat the lot as fatal configuration problems.
var ErrInvalidConfiguration = errors.New("invalid split configuration")

// Limits carries the process-wide floors. They are passed in explicitly
// rather than read ambiently, keeping the planner pure and directly
// testable against arbitrary floors.
type Limits struct {
	MinArchiveSize int64
	MinChunkCount  int
}

var DefaultLimits = Limits{
	MinArchiveSize: constants.MinArchiveSize,
	MinChunkCount:  constants.MinChunkCount,
}

// ChunkSize returns the maximum chunk size in bytes. Zero values of
// explicitSize/numChunks mean "not supplied"; exactly one of the two
// must be present. The result is a hard maximum the writer never plans
// past, not a target average - the final chunk simply absorbs whatever
// remains.
func ChunkSize(explicitSize int64, numChunks int, sourceSize int64, lim Limits) (int64, error) {

	if explicitSize == 0 && numChunks == 0 {
		return 0, fmt.Errorf(
			"%w: must provide either a chunk size or a number of chunks",
			ErrInvalidConfiguration,
		)
	}
	if explicitSize != 0 && numChunks != 0 {
		return 0, fmt.Errorf(
			"%w: chunk size and number of chunks are mutually exclusive",
			ErrInvalidConfiguration,
		)
	}

	if numChunks != 0 {
		if numChunks <= lim.MinChunkCount {
			return 0, fmt.Errorf(
				"%w: number of chunks must be greater than %d",
				ErrInvalidConfiguration,
				lim.MinChunkCount,
			)
		}

		// nearest-integer, not floor: half the chunks land slightly over
		// the quotient and half slightly under
		maxChunkSize := int64(math.Round(float64(sourceSize) / float64(numChunks)))

		if maxChunkSize < lim.MinArchiveSize {
			return 0, fmt.Errorf(
				"%w: calculated chunk size of %s bytes is below the %s byte minimum, try fewer than %d chunks",
				ErrInvalidConfiguration,
				text.Commify64(maxChunkSize),
				text.Commify64(lim.MinArchiveSize),
				numChunks,
			)
		}
		return maxChunkSize, nil
	}

	if explicitSize >= sourceSize {
		return 0, fmt.Errorf(
			"%w: chunk size must be less than the source archive size (%s >= %s)",
			ErrInvalidConfiguration,
			text.Commify64(explicitSize),
			text.Commify64(sourceSize),
		)
	}
	return explicitSize, nil
}
