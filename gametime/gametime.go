// SPDX-License-Identifier: GPL-2.0-or-later

package gametime

import (
	"time"

	"deflight/math"
)

type GameTime struct {
	start      time.Time
	time       float64
	oldTime    float64
	frameTime  float64
	frameCount int
}

func New() *GameTime {
	return &GameTime{start: time.Now(), frameTime: 0.1}
}

func (h *GameTime) Reset() {
	h.frameTime = 0.1
}

func (h *GameTime) Time() float64      { return h.time }
func (h *GameTime) OldTime() float64   { return h.oldTime }
func (h *GameTime) FrameTime() float64 { return h.frameTime }
func (h *GameTime) FrameCount() int    { return h.frameCount }
func (h *GameTime) FrameIncrease()     { h.frameCount++ }

// UpdateTime updates the clock from the wall time.
// Returns false if it would exceed maxFPS
func (h *GameTime) UpdateTime(maxFPS float64) bool {
	now := time.Since(h.start).Seconds()
	maxFPS = math.Clamp(10.0, maxFPS, 1000.0)
	if now-h.oldTime < 1/maxFPS {
		return false
	}
	h.advanceTo(now)
	return true
}

// Advance moves the clock by dt seconds. Used by headless runs.
func (h *GameTime) Advance(dt float64) {
	h.advanceTo(h.time + dt)
}

func (h *GameTime) advanceTo(now float64) {
	h.time = now
	h.frameTime = math.Clamp(0.001, h.time-h.oldTime, 0.1)
	h.oldTime = h.time
}
