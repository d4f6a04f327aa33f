package history

import (
	"fmt"
	"testing"

	"github.com/veilcut/veilcut/internal/region"
	"github.com/veilcut/veilcut/internal/subtitle"
)

func regionState(x float64) []region.Region {
	return []region.Region{{X: x, Y: 10, Width: 20, Height: 20}}
}

func TestCommitAndUndoRedo(t *testing.T) {
	log := New(0)

	if log.CanUndo() || log.CanRedo() {
		t.Fatal("fresh log should have nothing to undo or redo")
	}

	if !log.Commit(nil, regionState(1)) {
		t.Fatal("first commit should record")
	}
	if !log.Commit(nil, regionState(2)) {
		t.Fatal("second commit should record")
	}

	snap, ok := log.Undo()
	if !ok {
		t.Fatal("undo should succeed")
	}
	if !region.Equal(snap.Regions, regionState(1)) {
		t.Errorf("undo returned wrong state: %+v", snap.Regions)
	}

	snap, ok = log.Redo()
	if !ok {
		t.Fatal("redo should succeed")
	}
	if !region.Equal(snap.Regions, regionState(2)) {
		t.Errorf("redo returned wrong state: %+v", snap.Regions)
	}

	if _, ok := log.Redo(); ok {
		t.Error("redo at the end of history should fail")
	}
}

func TestUndoToInitialEmptyState(t *testing.T) {
	log := New(0)
	log.Commit(nil, regionState(1))

	snap, ok := log.Undo()
	if !ok {
		t.Fatal("undo should reach the seeded initial state")
	}
	if len(snap.Regions) != 0 || len(snap.Subtitles) != 0 {
		t.Errorf("initial snapshot should be empty, got %+v", snap)
	}

	if _, ok := log.Undo(); ok {
		t.Error("undo past the beginning should fail")
	}
}

func TestCommitEqualStateIsNoOp(t *testing.T) {
	log := New(0)
	log.Commit(nil, regionState(1))

	if log.Commit(nil, regionState(1)) {
		t.Error("committing an identical state should be a no-op")
	}
	if log.Len() != 2 {
		t.Errorf("expected 2 snapshots, got %d", log.Len())
	}
}

func TestCommitTruncatesRedoBranch(t *testing.T) {
	log := New(0)
	log.Commit(nil, regionState(1))
	log.Commit(nil, regionState(2))
	log.Commit(nil, regionState(3))

	log.Undo()
	log.Undo()

	// new commit abandons states 2 and 3
	log.Commit(nil, regionState(9))

	if log.CanRedo() {
		t.Error("redo branch should be gone after committing past an undo")
	}
	if log.Len() != 3 {
		t.Errorf("expected 3 snapshots (initial, 1, 9), got %d", log.Len())
	}
	if !region.Equal(log.Current().Regions, regionState(9)) {
		t.Errorf("current state wrong: %+v", log.Current().Regions)
	}

	snap, _ := log.Undo()
	if !region.Equal(snap.Regions, regionState(1)) {
		t.Errorf("undo after truncation should land on state 1, got %+v", snap.Regions)
	}
}

func TestCapEvictsOldestAndKeepsLogicalState(t *testing.T) {
	const limit = 5
	log := New(limit)

	for i := 1; i <= 10; i++ {
		log.Commit(nil, regionState(float64(i)))
	}

	if log.Len() != limit {
		t.Fatalf("expected %d snapshots, got %d", limit, log.Len())
	}
	if !region.Equal(log.Current().Regions, regionState(10)) {
		t.Errorf("current state wrong after eviction: %+v", log.Current().Regions)
	}

	// only limit-1 undos remain; the earliest states were evicted
	undos := 0
	for log.CanUndo() {
		log.Undo()
		undos++
	}
	if undos != limit-1 {
		t.Errorf("expected %d undos, got %d", limit-1, undos)
	}
	if !region.Equal(log.Current().Regions, regionState(6)) {
		t.Errorf(
			"oldest reachable state should be 6, got %+v",
			log.Current().Regions,
		)
	}
}

func TestSnapshotsAreIsolatedFromCallerMutation(t *testing.T) {
	log := New(0)

	subs := []subtitle.Entry{{ID: "a", OriginalText: "one"}}
	regs := regionState(1)
	log.Commit(subs, regs)

	// mutate the slices handed to Commit
	subs[0].OriginalText = "mutated"
	regs[0].X = 99

	cur := log.Current()
	if cur.Subtitles[0].OriginalText != "one" {
		t.Error("committed subtitles share memory with the caller")
	}
	if cur.Regions[0].X != 1 {
		t.Error("committed regions share memory with the caller")
	}

	// mutate what Current returned
	cur.Regions[0].X = 77
	if log.Current().Regions[0].X != 1 {
		t.Error("returned snapshots share memory with the log")
	}
}

func TestUndoRedoRoundTripExactness(t *testing.T) {
	log := New(0)

	states := make([][]region.Region, 0, 6)
	for i := 1; i <= 6; i++ {
		st := regionState(float64(i))
		states = append(states, st)
		log.Commit(
			[]subtitle.Entry{{ID: fmt.Sprintf("s%d", i), OriginalText: "t"}},
			st,
		)
	}

	for i := len(states) - 2; i >= 0; i-- {
		snap, ok := log.Undo()
		if !ok {
			t.Fatalf("undo %d failed", i)
		}
		if !region.Equal(snap.Regions, states[i]) {
			t.Fatalf("undo landed on %+v, want %+v", snap.Regions, states[i])
		}
	}

	for i := 1; i < len(states); i++ {
		snap, ok := log.Redo()
		if !ok {
			t.Fatalf("redo %d failed", i)
		}
		if !region.Equal(snap.Regions, states[i]) {
			t.Fatalf("redo landed on %+v, want %+v", snap.Regions, states[i])
		}
	}
}
