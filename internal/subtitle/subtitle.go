package subtitle

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a single dialogue span. IDs are stable for the life of a session
// and correlate entries with translation results and cached cue audio.
type Entry struct {
	ID             string
	StartTime      time.Duration
	EndTime        time.Duration
	OriginalText   string
	TranslatedText string

	// AudioRef is an opaque handle to synthesized speech for this entry,
	// produced by the speech service. Empty when no voice exists yet.
	AudioRef string
}

// NewID returns a fresh unique entry id.
func NewID() string {
	return uuid.NewString()
}

// DisplayText returns the translated text, falling back to the original
// when no translation is present.
func (e Entry) DisplayText() string {
	if e.TranslatedText != "" {
		return e.TranslatedText
	}
	return e.OriginalText
}

// ActiveAt returns the entry whose closed interval [StartTime, EndTime]
// contains t. Entries are scanned in list order and the first match wins;
// intervals are not guaranteed sorted or disjoint, so callers must not
// assume uniqueness.
func ActiveAt(entries []Entry, t time.Duration) (Entry, bool) {
	for _, e := range entries {
		if e.StartTime <= t && t <= e.EndTime {
			return e, true
		}
	}
	return Entry{}, false
}

// CloneEntries returns a value copy of the entry list.
func CloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// EntriesEqual reports structural equality of two entry lists.
func EntriesEqual(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
