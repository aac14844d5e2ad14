// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration, logger log.FieldLogger) *Time {
	t := &Time{
		fps:      cfg.FramesPerSecond,
		interval: time.Duration(cfg.StatsInterval) * time.Second,
		log:      logger,
		now:      time.Now,
	}
	if cfg.FramesPerSecond > 0 {
		t.fpsTicker = time.NewTicker(time.Second / time.Duration(cfg.FramesPerSecond))
	}
	t.since = t.now()
	return t
}

// Time paces the frame loop and counts frames.
// It is used from the thread running the loop only.
type Time struct {
	fps       int
	fpsTicker *time.Ticker

	interval time.Duration
	since    time.Time
	frames   int64

	log log.FieldLogger
	now func() time.Time
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// Pace blocks until the next frame may start. Returns
// immediately when frames are not capped.
func (t *Time) Pace() {
	if t.fpsTicker != nil {
		<-t.fpsTicker.C
	}
}

// FrameDone counts a rendered frame and reports the count once
// per stats interval. Returns true when a report was made.
func (t *Time) FrameDone() bool {
	t.frames++
	if t.interval == 0 {
		return false
	}
	now := t.now()
	elapsed := now.Sub(t.since)
	if elapsed < t.interval {
		return false
	}
	t.log.WithFields(log.Fields{
		"frames":  t.frames,
		"seconds": elapsed.Seconds(),
	}).Debug("frame statistics")
	t.frames = 0
	t.since = now
	return true
}

// Stop releases the ticker.
func (t *Time) Stop() {
	if t.fpsTicker != nil {
		t.fpsTicker.Stop()
	}
}
