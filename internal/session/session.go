// Package session ties subtitles, mask regions and edit history together
// behind declared operations. Callers never mutate session state through
// field writes; every change flows through Commit/Undo/Redo or the region
// editor, which keeps the history log consistent.
package session

import (
	"time"

	"github.com/veilcut/veilcut/internal/history"
	"github.com/veilcut/veilcut/internal/region"
	"github.com/veilcut/veilcut/internal/subtitle"
)

// Session is the editing state for one queued video.
type Session struct {
	subtitles []subtitle.Entry
	editor    *region.Editor
	log       *history.Log
}

// New creates an empty session. historyLimit <= 0 uses the default cap.
func New(historyLimit int) *Session {
	s := &Session{
		log: history.New(historyLimit),
	}
	s.editor = region.NewEditor(s.commit)
	return s
}

// Editor exposes the pointer-driven region editor. Completed editor
// gestures commit into this session's history automatically.
func (s *Session) Editor() *region.Editor { return s.editor }

// History exposes the undo/redo log for inspection.
func (s *Session) History() *history.Log { return s.log }

// Subtitles returns a copy of the current subtitle list.
func (s *Session) Subtitles() []subtitle.Entry {
	return subtitle.CloneEntries(s.subtitles)
}

// Regions returns a copy of the current region list.
func (s *Session) Regions() []region.Region {
	return s.editor.Regions()
}

// SetSubtitles replaces the subtitle list and commits.
func (s *Session) SetSubtitles(entries []subtitle.Entry) {
	s.subtitles = subtitle.CloneEntries(entries)
	s.commit()
}

// UpdateSubtitle replaces the entry with the same id and commits. Unknown
// ids are ignored.
func (s *Session) UpdateSubtitle(entry subtitle.Entry) {
	for i := range s.subtitles {
		if s.subtitles[i].ID == entry.ID {
			s.subtitles[i] = entry
			s.commit()
			return
		}
	}
}

// AddRegion clamps and appends a region and commits. Regions whose clamped
// width or height falls below region.MinDrawSize are discarded, never
// committed. It reports whether the region was added.
func (s *Session) AddRegion(r region.Region) bool {
	r = r.Clamped()
	if r.Width < region.MinDrawSize || r.Height < region.MinDrawSize {
		return false
	}
	s.editor.SetRegions(append(s.editor.Regions(), r))
	s.commit()
	return true
}

// ActiveSubtitle resolves the subtitle active at playback time t.
func (s *Session) ActiveSubtitle(t time.Duration) (subtitle.Entry, bool) {
	return subtitle.ActiveAt(s.subtitles, t)
}

// Undo restores the previous snapshot. It reports false when there is
// nothing to undo.
func (s *Session) Undo() bool {
	snap, ok := s.log.Undo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

// Redo restores the snapshot undone last. It reports false when there is
// nothing to redo.
func (s *Session) Redo() bool {
	snap, ok := s.log.Redo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

func (s *Session) restore(snap history.Snapshot) {
	s.subtitles = snap.Subtitles
	s.editor.SetRegions(snap.Regions)
}

func (s *Session) commit() {
	s.log.Commit(s.subtitles, s.editor.Regions())
}
