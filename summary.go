package tarsplit

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/anjor/tarsplit/internal/util/text"
)

type statSummary struct {
	EventType string `json:"event"`

	SourceSize     int64 `json:"sourceSize"`
	PlannedMaximum int64 `json:"maxChunkSize"`
	Entries        int64 `json:"entries"`

	Chunks []chunkStats `json:"chunks"`

	SysStats sysStats `json:"sys"`
}

type chunkStats struct {
	Index          int    `json:"index"`
	Path           string `json:"path"`
	Entries        int64  `json:"entries"`
	FootprintBytes int64  `json:"footprint"`
	FileSizeBytes  int64  `json:"filesize"`
	Digest         string `json:"digest,omitempty"`
}

type sysStats struct {
	ArgvExpanded []string `json:"argvExpanded"`
	ArgvInitial  []string `json:"argvInitial"`
	ElapsedNsecs int64    `json:"elapsedNsecs"`

	// getrusage() deltas, populated on unix only
	CpuUserNsecs int64 `json:"cpuUserNsecs"`
	CpuSysNsecs  int64 `json:"cpuSysNsecs"`
	MaxRssBytes  int64 `json:"maxMemoryUsed"`
	MinFlt       int64 `json:"cacheMinorFaults"`
	MajFlt       int64 `json:"cacheMajorFaults"`
	BioRead      int64 `json:"blockIoReads,omitempty"`
	BioWrite     int64 `json:"blockIoWrites,omitempty"`
	Sigs         int64 `json:"signalsReceived,omitempty"`
	CtxSwYield   int64 `json:"contextSwitchYields"`
	CtxSwForced  int64 `json:"contextSwitchForced"`
}

func setStatSummary() statSummary {
	return statSummary{
		EventType: "summary",
	}
}

// OutputSummary renders the run to whichever stats emitters are active.
// Purely advisory: disabling both changes nothing about the split.
func (ts *Tarsplit) OutputSummary() {

	if w := ts.cfg.emitters[emStatsJsonl]; w != nil {
		jsonl, err := json.Marshal(ts.statSummary)
		if err != nil {
			log.Fatalf("encoding stats summary failed: %s", err)
		}
		jsonl = append(jsonl, '\n')
		if _, err := w.Write(jsonl); err != nil {
			log.Fatalf("emitting '%s' failed: %s", emStatsJsonl, err)
		}
	}

	w := ts.cfg.emitters[emStatsText]
	if w == nil {
		return
	}

	s := &ts.statSummary
	writeTextSummary(w, s)
}

func writeTextSummary(w io.Writer, s *statSummary) {

	fmt.Fprintf(w,
		"\nSplit %s source bytes into %d chunk(s) of at most %s bytes each\n\n",
		text.Commify64(s.SourceSize),
		len(s.Chunks),
		text.Commify64(s.PlannedMaximum),
	)

	for _, c := range s.Chunks {
		line := fmt.Sprintf(
			"%4d  %-32s %9s entries %18s footprint bytes",
			c.Index,
			filepath.Base(c.Path),
			text.Commify64(c.Entries),
			text.Commify64(c.FootprintBytes),
		)
		if c.Digest != "" {
			line += "  " + c.Digest
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w,
		"\nTotal entries: %s\nWall time:     %s\n",
		text.Commify64(s.Entries),
		time.Duration(s.SysStats.ElapsedNsecs).Truncate(time.Millisecond),
	)

	if s.SysStats.CpuUserNsecs != 0 || s.SysStats.CpuSysNsecs != 0 {
		fmt.Fprintf(w,
			"Cpu time:      %s user / %s sys\nPeak RSS:      %s bytes\n",
			time.Duration(s.SysStats.CpuUserNsecs).Truncate(time.Millisecond),
			time.Duration(s.SysStats.CpuSysNsecs).Truncate(time.Millisecond),
			text.Commify64(s.SysStats.MaxRssBytes),
		)
	}
}
