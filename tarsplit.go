// Package tarsplit repartitions a single tar archive into a sequence of
// smaller, independently valid tar archives, cutting only at entry
// boundaries so that no member file is ever torn across two outputs.
package tarsplit

import (
	"io"
	"os"

	"github.com/anjor/tarsplit/internal/hasher"
	"github.com/anjor/tarsplit/internal/util/argparser"
)

type Tarsplit struct {
	cfg         config
	statSummary statSummary

	// derived during argv validation
	sourceSize     int64
	plannedMaximum int64
	chunkStem      string

	digester        hasher.Initializer
	formattedDigest func([]byte) string

	externalEventBus chan<- SplitEvent
}

func NewTarsplit() *Tarsplit {
	return &Tarsplit{
		cfg:         defaultConfig(),
		statSummary: setStatSummary(),
	}
}

// NewTarsplitWithWriters parses argv and binds the emitters to the
// supplied streams, accumulating every configuration problem instead of
// terminating: the caller decides what a non-empty error list means.
func NewTarsplitWithWriters(argv []string, stderr, stdout io.Writer) (ts *Tarsplit, argErrs []error) {

	ts = NewTarsplit()
	ts.statSummary.SysStats.ArgvInitial = getInitialArgs(argv)

	cfg := &ts.cfg
	cfg.initArgvParser()

	positionals, argErrs := argparser.Parse(argv, cfg.optSet)

	if cfg.Help {
		return ts, nil
	}

	argErrs = append(argErrs, ts.setupEmitters(stderr, stdout)...)
	argErrs = append(argErrs, ts.setupDigester()...)
	argErrs = append(argErrs, ts.validateSplitRequest(positionals)...)

	if len(argErrs) > 0 {
		return
	}

	ts.snapshotArgvExpanded()
	return
}

// NewTarsplitFromArgv is the entrypoint flavor: prints usage and exits
// on --help, logs accumulated argument errors and exits nonzero.
func NewTarsplitFromArgv(argv []string) *Tarsplit {

	ts, argErrs := NewTarsplitWithWriters(argv, os.Stderr, os.Stdout)

	if ts.cfg.Help {
		ts.cfg.printUsage()
		os.Exit(0)
	}

	logArgParseErrors(argErrs, &ts.cfg)
	return ts
}
