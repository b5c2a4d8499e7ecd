package tarsplit

import "github.com/pborman/getopt/v2"

type config struct {
	optSet *getopt.Set

	// where the various outputs go
	emitters emissionTargets

	//
	// Bulk of CLI options definition starts here, the rest further down in initArgvParser()
	//

	Help bool `getopt:"-h --help Display help"`

	ChunkSize int64 `getopt:"-c --chunk-size=bytes Maximum size of each output chunk in bytes. Mutually exclusive with --num-chunks"`
	NumChunks int   `getopt:"-n --num-chunks=count Desired number of output chunks, the maximum chunk size is derived from the source archive size. Mutually exclusive with --chunk-size"`

	Prefix string `getopt:"-p --prefix=string Prefix for output chunk filenames. Default:"`

	CopyBufferSize int `getopt:"--copy-buffer-size=bytes Size of the reusable buffer each entry's data is streamed through. Default:"`

	DigestMultibase string `getopt:"--digest-multibase=string Rendering of chunk digests, one of 'hex', 'base36'. Default:"`

	emittersStdErr []string // Emitter spec: option/helptext in initArgvParser()
	emittersStdOut []string // Emitter spec: option/helptext in initArgvParser()

	requestedDigest string // Digest: option/helptext in initArgvParser()

	// positional <source.tar> <target-directory>, filled in during validation
	sourcePath string
	targetPath string
}

func defaultConfig() config {
	return config{
		Prefix:          "split",
		CopyBufferSize:  2 * 1024 * 1024,
		DigestMultibase: "hex",
		requestedDigest: "sha2-256",
		emittersStdErr:  []string{emProgressText},
		emittersStdOut:  []string{emStatsText},
		emitters: emissionTargets{
			emNone:         nil,
			emProgressText: nil,
			emChunksJsonl:  nil,
			emStatsText:    nil,
			emStatsJsonl:   nil,
		},
	}
}
