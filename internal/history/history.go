// Package history keeps a bounded undo/redo log of editing state.
package history

import (
	"github.com/veilcut/veilcut/internal/region"
	"github.com/veilcut/veilcut/internal/subtitle"
)

// DefaultLimit is the snapshot cap used when no limit is configured.
const DefaultLimit = 50

// Snapshot is an immutable (subtitles, regions) value pair captured at one
// point in history. Collections are deep-copied on the way in and out so
// snapshots never share mutable state with the live session.
type Snapshot struct {
	Subtitles []subtitle.Entry
	Regions   []region.Region
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Subtitles: subtitle.CloneEntries(s.Subtitles),
		Regions:   region.Clone(s.Regions),
	}
}

func (s Snapshot) equal(o Snapshot) bool {
	return subtitle.EntriesEqual(s.Subtitles, o.Subtitles) &&
		region.Equal(s.Regions, o.Regions)
}

// Log is a branch-truncating undo/redo stack. The cursor always points at
// the logical current state, so it stays within [0, Len()-1].
type Log struct {
	snapshots []Snapshot
	cursor    int
	limit     int
}

// New creates a log seeded with an empty initial snapshot. limit <= 0 uses
// DefaultLimit.
func New(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{
		snapshots: []Snapshot{{}},
		limit:     limit,
	}
}

// Commit records the given state. It is a no-op when the state is
// structurally equal to the current snapshot. A commit after an undo
// discards every snapshot past the cursor before appending. When the cap is
// exceeded the oldest snapshot is evicted and the cursor decremented, which
// can make the true initial state unreachable; inherited behavior, kept.
func (l *Log) Commit(subtitles []subtitle.Entry, regions []region.Region) bool {
	next := Snapshot{Subtitles: subtitles, Regions: regions}
	if next.equal(l.snapshots[l.cursor]) {
		return false
	}

	l.snapshots = append(l.snapshots[:l.cursor+1], next.clone())
	l.cursor++

	if len(l.snapshots) > l.limit {
		l.snapshots = l.snapshots[1:]
		l.cursor--
	}
	return true
}

// Undo steps the cursor back and returns the snapshot now current. It
// reports false at the beginning of history.
func (l *Log) Undo() (Snapshot, bool) {
	if l.cursor == 0 {
		return Snapshot{}, false
	}
	l.cursor--
	return l.snapshots[l.cursor].clone(), true
}

// Redo steps the cursor forward and returns the snapshot now current. It
// reports false at the end of history.
func (l *Log) Redo() (Snapshot, bool) {
	if l.cursor == len(l.snapshots)-1 {
		return Snapshot{}, false
	}
	l.cursor++
	return l.snapshots[l.cursor].clone(), true
}

// Current returns a copy of the snapshot at the cursor.
func (l *Log) Current() Snapshot {
	return l.snapshots[l.cursor].clone()
}

// Len returns the number of stored snapshots.
func (l *Log) Len() int { return len(l.snapshots) }

// Cursor returns the index of the current snapshot.
func (l *Log) Cursor() int { return l.cursor }

// CanUndo reports whether Undo would succeed.
func (l *Log) CanUndo() bool { return l.cursor > 0 }

// CanRedo reports whether Redo would succeed.
func (l *Log) CanRedo() bool { return l.cursor < len(l.snapshots)-1 }
