// Package audiocue keeps synthesized-voice playback loosely synchronized
// with the active subtitle during interactive preview. Cueing is
// best-effort, not frame-accurate: start failures are swallowed.
package audiocue

import (
	"time"

	"github.com/veilcut/veilcut/internal/logging"
	"github.com/veilcut/veilcut/internal/subtitle"
)

// Cuer caches one player per subtitle id and starts/stops playback as the
// active subtitle changes. It is driven from the playback time-update path
// only and is not safe for concurrent use.
type Cuer struct {
	factory Factory
	logger  *logging.Logger

	players    map[string]Player
	current    Player
	currentRef string
}

// New creates a cuer. logger may be nil.
func New(factory Factory, logger *logging.Logger) *Cuer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cuer{
		factory: factory,
		logger:  logger,
		players: make(map[string]Player),
	}
}

// Update reconciles playback with the subtitle active at time t.
func (c *Cuer) Update(entries []subtitle.Entry, t time.Duration) {
	active, ok := subtitle.ActiveAt(entries, t)
	if !ok || active.AudioRef == "" {
		c.Stop()
		return
	}

	// already voicing this cue
	if active.AudioRef == c.currentRef && c.current != nil {
		return
	}

	c.Stop()

	player, ok := c.players[active.ID]
	if !ok {
		var err error
		player, err = c.factory(active.AudioRef)
		if err != nil {
			c.logger.Debugw("cue player creation failed",
				"subtitle_id", active.ID,
				"error", err,
			)
			return
		}
		c.players[active.ID] = player
	}

	player.Rewind()
	if err := player.Start(); err != nil {
		c.logger.Debugw("cue playback failed to start",
			"subtitle_id", active.ID,
			"error", err,
		)
		return
	}

	c.current = player
	c.currentRef = active.AudioRef
}

// Stop halts and clears the currently playing handle, if any.
func (c *Cuer) Stop() {
	if c.current != nil {
		c.current.Stop()
	}
	c.current = nil
	c.currentRef = ""
}

// Close stops playback and releases every cached player.
func (c *Cuer) Close() error {
	c.Stop()
	var lastErr error
	for id, p := range c.players {
		if err := p.Close(); err != nil {
			lastErr = err
		}
		delete(c.players, id)
	}
	return lastErr
}
