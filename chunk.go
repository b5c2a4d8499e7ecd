package tarsplit

import (
	"archive/tar"
	"bufio"
	"fmt"
	"hash"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/anjor/tarsplit/internal/constants"
	"github.com/anjor/tarsplit/internal/util/stream"
	"github.com/anjor/tarsplit/internal/util/text"
)

// chunkSink owns the currently open output archive. Exactly one exists
// at any time: opened on chunk start, written append-only, sealed
// exactly once, never reopened.
type chunkSink struct {
	_ constants.Incomparable

	index       int
	path        string
	accumulated int64 // sum of entry footprints, accounting-side
	entries     int64

	fh       *os.File
	bw       *bufio.Writer
	digester hash.Hash
	tw       *tar.Writer
}

func (ts *Tarsplit) chunkFilename(index int) string {
	return fmt.Sprintf("%s_%s_%d.tar", ts.cfg.Prefix, ts.chunkStem, index)
}

func (ts *Tarsplit) openChunk(index int) (*chunkSink, error) {

	c := &chunkSink{
		index: index,
		path:  filepath.Join(ts.cfg.targetPath, ts.chunkFilename(index)),
	}

	// O_EXCL: a rerun must never silently clobber earlier output
	fh, err := os.OpenFile(c.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("creating chunk %d: %w", index, err)
	}

	c.fh = fh
	c.bw = bufio.NewWriter(fh)

	var sink io.Writer = c.bw
	if ts.digester != nil {
		c.digester = ts.digester()
		sink = io.MultiWriter(c.bw, c.digester)
	}
	c.tw = tar.NewWriter(sink)

	return c, nil
}

func (c *chunkSink) appendEntry(hdr *tar.Header, entryData io.Reader, copyBuf []byte) error {

	if err := c.tw.WriteHeader(hdr); err != nil {
		return err
	}

	copied, err := io.CopyBuffer(c.tw, entryData, copyBuf)
	if err != nil {
		return err
	}
	if constants.PerformSanityChecks && copied != hdr.Size {
		return fmt.Errorf(
			"charged for %s declared bytes but copied %s",
			text.Commify64(hdr.Size),
			text.Commify64(copied),
		)
	}

	return nil
}

// sealChunk writes the format trailer, flushes and closes the file, and
// records the chunk in the run summary. After it returns the chunk is a
// complete archive readable on its own.
func (ts *Tarsplit) sealChunk(c *chunkSink) error {

	if err := c.tw.Close(); err != nil {
		_ = c.fh.Close()
		return fmt.Errorf("writing trailer of chunk %d: %w", c.index, err)
	}
	if err := c.bw.Flush(); err != nil {
		_ = c.fh.Close()
		return fmt.Errorf("flushing chunk %d: %w", c.index, err)
	}

	var fileSize int64
	if fi, err := c.fh.Stat(); err == nil {
		fileSize = fi.Size()
		for _, opt := range stream.WriteOptimizations {
			if optErr := opt.Action(c.fh, fi); optErr != nil && optErr != os.ErrInvalid {
				log.Printf("Failed to apply write optimization hint '%s' to chunk %d: %s\n", opt.Name, c.index, optErr)
			}
		}
	}

	if err := c.fh.Close(); err != nil {
		return fmt.Errorf("closing chunk %d: %w", c.index, err)
	}

	var digest string
	if c.digester != nil {
		digest = ts.formattedDigest(c.digester.Sum(nil))
	}

	ts.statSummary.Chunks = append(ts.statSummary.Chunks, chunkStats{
		Index:          c.index,
		Path:           c.path,
		Entries:        c.entries,
		FootprintBytes: c.accumulated,
		FileSizeBytes:  fileSize,
		Digest:         digest,
	})

	ts.emitProgress(
		"chunk %d sealed: %s entries, %s footprint bytes",
		c.index,
		text.Commify64(c.entries),
		text.Commify64(c.accumulated),
	)

	jsonl := fmt.Sprintf(
		"{\"event\":\"chunk\", \"index\":%5d, \"entries\":%8d, \"footprint\":%12d, \"filesize\":%12d, \"digest\":\"%s\" }\n",
		c.index,
		c.entries,
		c.accumulated,
		fileSize,
		digest,
	)
	ts.maybeSendEvent(ChunkSealedJsonl, jsonl)
	if w := ts.cfg.emitters[emChunksJsonl]; w != nil {
		if _, err := io.WriteString(w, jsonl); err != nil {
			return fmt.Errorf("emitting '%s' failed: %w", emChunksJsonl, err)
		}
	}

	return nil
}
