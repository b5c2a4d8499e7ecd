package tarsplit

import (
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/anjor/tarsplit/internal/constants"
	"github.com/anjor/tarsplit/internal/hasher"
	"github.com/anjor/tarsplit/internal/plan"
	"github.com/anjor/tarsplit/internal/tarfmt"
	"github.com/anjor/tarsplit/internal/util/argparser"
	"github.com/anjor/tarsplit/internal/util/stream"
	"github.com/anjor/tarsplit/internal/util/text"

	"github.com/multiformats/go-base36"
	"github.com/pborman/getopt/v2"
	"github.com/pborman/options"
)

type emissionTargets map[string]io.Writer

const (
	emNone         = "none"
	emProgressText = "progress-text"
	emChunksJsonl  = "chunks-jsonl"
	emStatsText    = "stats-text"
	emStatsJsonl   = "stats-jsonl"
)

// where the CLI initial error messages go
var argParseErrOut io.Writer = os.Stderr

func (cfg *config) printUsage() {
	cfg.optSet.PrintUsage(argParseErrOut)
	fmt.Fprint(argParseErrOut, "\n")
}

func (cfg *config) initArgvParser() {
	// The default documented way of using pborman/options is to muck with globals
	// Operate over objects instead, allowing us to re-parse argv multiple times
	o := getopt.New()
	if err := options.RegisterSet("", cfg, o); err != nil {
		log.Fatalf("option set registration failed: %s", err)
	}
	cfg.optSet = o

	o.SetParameters("<source.tar> <target-directory>")

	// Several options have the help-text assembled programmatically
	o.FlagLong(&cfg.requestedDigest, "digest", 0,
		"Digest recorded for each sealed chunk, one of: "+text.AvailableMapKeys(hasher.AvailableHashers),
		"algname",
	)
	o.FlagLong(&cfg.emittersStdErr, "emit-stderr", 0, fmt.Sprintf(
		"One or more emitters to activate on stdERR. Available emitters are %s. Default: ",
		text.AvailableMapKeys(cfg.emitters),
	), "comma,sep,emitters")
	o.FlagLong(&cfg.emittersStdOut, "emit-stdout", 0,
		"One or more emitters to activate on stdOUT. Available emitters same as above. Default: ",
		"comma,sep,emitters",
	)
}

func (ts *Tarsplit) setupEmitters(stderr, stdout io.Writer) (argErrs []error) {

	bind := func(optName string, requested []string, target io.Writer) map[string]bool {
		active := make(map[string]bool, len(requested))
		for _, s := range requested {
			active[s] = true
			if val, exists := ts.cfg.emitters[s]; !exists {
				argErrs = append(argErrs, fmt.Errorf(
					"invalid emitter '%s' specified for --%s. Available emitters are: %s",
					s,
					optName,
					text.AvailableMapKeys(ts.cfg.emitters),
				))
			} else if s == emNone {
				continue
			} else if val != nil {
				argErrs = append(argErrs, fmt.Errorf("emitter '%s' specified more than once", s))
			} else {
				ts.cfg.emitters[s] = target
			}
		}
		return active
	}

	activeStderr := bind("emit-stderr", ts.cfg.emittersStdErr, stderr)
	activeStdout := bind("emit-stdout", ts.cfg.emittersStdOut, stdout)

	for _, exclusiveEmitter := range []string{
		emNone,
		emStatsText,
		emStatsJsonl,
	} {
		if activeStderr[exclusiveEmitter] && len(activeStderr) > 1 {
			argErrs = append(argErrs, fmt.Errorf(
				"when specified, emitter '%s' must be the sole argument to --emit-stderr",
				exclusiveEmitter,
			))
		}
		if activeStdout[exclusiveEmitter] && len(activeStdout) > 1 {
			argErrs = append(argErrs, fmt.Errorf(
				"when specified, emitter '%s' must be the sole argument to --emit-stdout",
				exclusiveEmitter,
			))
		}
	}

	// machine-readable streams pointed at a terminal help no one
	for _, jsonlEmitter := range []string{emChunksJsonl, emStatsJsonl} {
		if stream.IsTTY(ts.cfg.emitters[jsonlEmitter]) {
			argErrs = append(argErrs, fmt.Errorf(
				"output of '%s' to a TTY is not supported",
				jsonlEmitter,
			))
		}
	}

	return
}

func (ts *Tarsplit) setupDigester() (argErrs []error) {

	init, exists := hasher.AvailableHashers[ts.cfg.requestedDigest]
	if !exists {
		argErrs = append(argErrs, fmt.Errorf(
			"digest '%s' requested via '--digest=algname' is not valid. Available hash names are %s",
			ts.cfg.requestedDigest,
			text.AvailableMapKeys(hasher.AvailableHashers),
		))
	} else {
		ts.digester = init
	}

	switch ts.cfg.DigestMultibase {
	case "hex":
		ts.formattedDigest = hex.EncodeToString
	case "base36":
		ts.formattedDigest = func(digest []byte) string {
			return "k" + base36.EncodeToStringLc(digest)
		}
	default:
		argErrs = append(argErrs, fmt.Errorf(
			"unsupported digest multibase '%s'",
			ts.cfg.DigestMultibase,
		))
	}

	return
}

func (ts *Tarsplit) validateSplitRequest(positionals []string) (argErrs []error) {

	cfg := &ts.cfg

	if len(positionals) != 2 {
		return []error{fmt.Errorf(
			"exactly two positional parameters expected: <source.tar> <target-directory>",
		)}
	}
	cfg.sourcePath, cfg.targetPath = positionals[0], positionals[1]

	if cfg.ChunkSize < 0 {
		argErrs = append(argErrs, fmt.Errorf("--chunk-size can not be negative"))
	} else if cfg.ChunkSize > 0 && cfg.ChunkSize < constants.MinArchiveSize {
		argErrs = append(argErrs, fmt.Errorf(
			"--chunk-size must be at least %s bytes",
			text.Commify64(constants.MinArchiveSize),
		))
	}
	if cfg.NumChunks < 0 {
		argErrs = append(argErrs, fmt.Errorf("--num-chunks can not be negative"))
	}

	argErrs = append(argErrs, argparser.CheckIntOptionRange(
		cfg.optSet, "copy-buffer-size", 4096, 256*1024*1024,
	)...)

	srcStat, statErr := os.Stat(cfg.sourcePath)
	if statErr != nil {
		argErrs = append(argErrs, fmt.Errorf("source must point to an existing archive: %s", statErr))
	} else if !srcStat.Mode().IsRegular() {
		argErrs = append(argErrs, fmt.Errorf("source '%s' is not a regular file", cfg.sourcePath))
	} else {
		ts.sourceSize = srcStat.Size()
		if ts.sourceSize < constants.MinArchiveSize {
			argErrs = append(argErrs, fmt.Errorf(
				"source archive is less than %s bytes",
				text.Commify64(constants.MinArchiveSize),
			))
		}
	}

	if tgtStat, statErr := os.Stat(cfg.targetPath); statErr != nil {
		argErrs = append(argErrs, fmt.Errorf("target must point to an existing directory: %s", statErr))
	} else if !tgtStat.IsDir() {
		argErrs = append(argErrs, fmt.Errorf("target '%s' is not a directory", cfg.targetPath))
	}

	sourceBase := filepath.Base(cfg.sourcePath)
	if tarfmt.DetectCompression(sourceBase) != tarfmt.CompressionNone && cfg.NumChunks != 0 {
		argErrs = append(argErrs, fmt.Errorf(
			"--num-chunks can not be used with a compressed source (the uncompressed total is not known upfront): use --chunk-size instead",
		))
	}

	if len(argErrs) > 0 {
		return
	}

	planned, planErr := plan.ChunkSize(cfg.ChunkSize, cfg.NumChunks, ts.sourceSize, plan.DefaultLimits)
	if planErr != nil {
		return append(argErrs, planErr)
	}

	ts.plannedMaximum = planned
	ts.chunkStem = tarfmt.Stem(sourceBase)

	ts.statSummary.SourceSize = ts.sourceSize
	ts.statSummary.PlannedMaximum = planned

	return
}

func getInitialArgs(argv []string) []string {
	initial := make([]string, len(argv))
	copy(initial, argv)
	return initial
}

func logArgParseErrors(argErrs []error, cfg *config) {
	if len(argErrs) == 0 {
		return
	}

	fmt.Fprint(argParseErrOut, "\nFatal error parsing arguments:\n\n")
	for _, e := range argErrs {
		fmt.Fprintf(argParseErrOut, "%s\n", e)
	}
	fmt.Fprint(argParseErrOut, "\n")
	cfg.printUsage()
	os.Exit(1)
}

// take a snapshot of the options we ended up with, for the summary
func (ts *Tarsplit) snapshotArgvExpanded() {
	ts.cfg.optSet.VisitAll(func(o getopt.Option) {
		switch o.LongName() {
		case "help":
			// nothing to record
		default:
			ts.statSummary.SysStats.ArgvExpanded = append(
				ts.statSummary.SysStats.ArgvExpanded, fmt.Sprintf(`--%s=%s`,
					o.LongName(),
					o.Value().String(),
				),
			)
		}
	})
	sort.Strings(ts.statSummary.SysStats.ArgvExpanded)
}
