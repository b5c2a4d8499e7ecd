package stream

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTTY reports whether the given handle (accepted loosely, as both
// readers and writers end up here) is an interactive terminal.
func IsTTY(fh interface{}) bool {
	f, isFile := fh.(*os.File)
	return isFile && isatty.IsTerminal(f.Fd())
}

type Optimization struct {
	Name   string
	Action func(fh *os.File, stat os.FileInfo) error
}

// Platform-specific hint sets, populated from init() in the
// build-constrained files. An Action returning os.ErrInvalid means the
// hint does not apply to this file type - callers skip it silently.
var ReadOptimizations []Optimization
var WriteOptimizations []Optimization
