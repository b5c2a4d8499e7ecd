package plan

import (
	"errors"
	"testing"
)

// Fixture values lifted from real-world split runs: explicit sizes and
// chunk counts against multi-gigabyte source archives.
func TestChunkSize(t *testing.T) {

	tests := []struct {
		expected   int64
		expectErr  bool
		chunkSize  int64
		numChunks  int
		sourceSize int64
	}{
		{0, true, 0, 0, 4096},         // neither intent supplied
		{0, true, 2048, 4, 16384},     // both intents supplied
		{0, true, 0, 3, 1024},         // derived size rounds below the floor
		{0, true, 2048, 0, 1024},      // explicit size exceeds source
		{0, true, 1024, 0, 1024},      // explicit size equals source
		{0, true, 0, 2, 14398217261},  // count at the degenerate minimum
		{0, true, 0, 1, 14398217261},  // count below the degenerate minimum

		{15044193919, false, 15044193919, 0, 16634133390},
		{37629135304, false, 37629135304, 0, 46228510722},
		{24684425755, false, 24684425755, 0, 29434577089},
		{17016020886, false, 17016020886, 0, 51155793224},
		{3538808281, false, 0, 10, 35388082811},
		{2302398318, false, 2302398318, 0, 3528792383},
		{7119293162, false, 7119293162, 0, 9264872871},
		{515418526, false, 0, 12, 6185022310},
		{122409328, false, 122409328, 0, 4963699455},
		{9151011641, false, 0, 5, 45755058207},
		{13559357808, false, 13559357808, 0, 24230229168},
		{2966266890, false, 0, 10, 29662668896},
		{32775332, false, 0, 17, 557180652},
		{8565004352, false, 8565004352, 0, 22489160338},
		{26025676716, false, 26025676716, 0, 37848167206},
		{16166691602, false, 16166691602, 0, 18969499869},
		{1233997522, false, 0, 18, 22211955399},
		{7216833632, false, 7216833632, 0, 26792632238},
		{15195086225, false, 15195086225, 0, 47609272141},
	}

	for _, tt := range tests {
		got, err := ChunkSize(tt.chunkSize, tt.numChunks, tt.sourceSize, DefaultLimits)

		if tt.expectErr {
			if err == nil {
				t.Errorf(
					"ChunkSize(%d, %d, %d): expected failure, got %d",
					tt.chunkSize, tt.numChunks, tt.sourceSize, got,
				)
			} else if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf(
					"ChunkSize(%d, %d, %d): error not tagged ErrInvalidConfiguration: %s",
					tt.chunkSize, tt.numChunks, tt.sourceSize, err,
				)
			}
			continue
		}

		if err != nil {
			t.Errorf(
				"ChunkSize(%d, %d, %d): unexpected error: %s",
				tt.chunkSize, tt.numChunks, tt.sourceSize, err,
			)
			continue
		}
		if got != tt.expected {
			t.Errorf(
				"ChunkSize(%d, %d, %d): got %d, expected %d",
				tt.chunkSize, tt.numChunks, tt.sourceSize, got, tt.expected,
			)
		}
	}
}

// The explicit size is a passthrough for any value strictly below the
// source size, floors included: the planner trusts upstream validation
// of the absolute minimum.
func TestChunkSizeExplicitPassthrough(t *testing.T) {
	for _, size := range []int64{1024, 4096, 1 << 30} {
		got, err := ChunkSize(size, 0, size+1, DefaultLimits)
		if err != nil {
			t.Fatalf("ChunkSize(%d): %s", size, err)
		}
		if got != size {
			t.Fatalf("ChunkSize(%d): explicit size altered to %d", size, got)
		}
	}
}

// Custom floors are honored when supplied, nothing is read ambiently.
func TestChunkSizeCustomLimits(t *testing.T) {

	lim := Limits{MinArchiveSize: 1 << 20, MinChunkCount: 4}

	if _, err := ChunkSize(0, 4, 1<<30, lim); err == nil {
		t.Error("count equal to MinChunkCount should fail")
	}
	if _, err := ChunkSize(0, 5, 5<<19, lim); err == nil {
		t.Error("derived size below custom floor should fail")
	}
	got, err := ChunkSize(0, 5, 5<<20, lim)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != 1<<20 {
		t.Fatalf("got %d, expected %d", got, 1<<20)
	}
}
