// SPDX-License-Identifier: GPL-2.0-or-later

package view

import (
	"deflight/math/vec"
	"deflight/render"
	"deflight/shading"
)

type CascadeState int

const (
	Idle CascadeState = iota
	Due
	Rendering
	Committed
)

func (s CascadeState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Due:
		return "due"
	case Rendering:
		return "rendering"
	case Committed:
		return "committed"
	}
	return "unknown"
}

type cascadeSlot struct {
	cfg     Cascade
	state   CascadeState
	next    float64
	data    shading.ShadowDataOrtho
	valid   bool
	renders int
}

// Scheduler renders the cascades of the global light at a capped rate.
// Between renders the last committed data is reused.
type Scheduler struct {
	slots []cascadeSlot
}

func NewScheduler(cs []Cascade) *Scheduler {
	s := &Scheduler{}
	s.SetCascades(cs)
	return s
}

// SetCascades replaces the cascade table and forgets all rendered data.
func (s *Scheduler) SetCascades(cs []Cascade) {
	if len(cs) > render.NumCascades {
		cs = cs[:render.NumCascades]
	}
	s.slots = make([]cascadeSlot, len(cs))
	for i, c := range cs {
		s.slots[i].cfg = c
	}
}

func (s *Scheduler) Len() int { return len(s.slots) }

func (s *Scheduler) Cascade(i int) Cascade { return s.slots[i].cfg }

func (s *Scheduler) State(i int) CascadeState { return s.slots[i].state }

// Renders returns how often cascade i was rendered.
func (s *Scheduler) Renders(i int) int { return s.slots[i].renders }

// Reset forces every cascade to render on the next frame.
func (s *Scheduler) Reset() {
	for i := range s.slots {
		sl := &s.slots[i]
		sl.state = Idle
		sl.next = 0
		sl.valid = false
	}
}

// Poll moves cascade i to Due if its update time has come. A next update
// time further away than the delay means the clock went backwards and the
// cascade is due as well.
func (s *Scheduler) Poll(i int, now float64) bool {
	sl := &s.slots[i]
	switch sl.state {
	case Due:
		return true
	case Rendering:
		return false
	}
	delay := float64(sl.cfg.UpdateDelay)
	delta := sl.next - now
	if sl.valid && delta > 0 && delta <= delay {
		return false
	}
	sl.next = now + delay
	sl.state = Due
	return true
}

func (s *Scheduler) begin(i int) {
	s.slots[i].state = Rendering
}

func (s *Scheduler) commit(i int, d shading.ShadowDataOrtho) {
	sl := &s.slots[i]
	sl.data = d
	sl.valid = true
	sl.renders++
	sl.state = Committed
}

// abort drops back to Idle so the next frame tries again.
func (s *Scheduler) abort(i int) {
	sl := &s.slots[i]
	sl.state = Idle
	sl.next = 0
}

// Render renders every due cascade of the global light g and commits the
// data of all cascades rendered so far. It returns the number of cascades
// rendered this frame.
func (s *Scheduler) Render(ctx *render.Context, r *Runner, g shading.GlobalLight, eye, mainFwd vec.Vec3, now float64) int {
	dir := vec.Vec3{g.Direction[0], g.Direction[1], g.Direction[2]}
	if dir.LengthSqr() == 0 {
		dir = vec.Vec3{0, 0, 1}
	}
	n := 0
	for i := range s.slots {
		if s.Poll(i, now) {
			c := s.slots[i].cfg
			d := CascadeView(i, c, eye, mainFwd, dir)
			s.begin(i)
			if r.Run(ctx, &d) {
				s.commit(i, OrthoData(&d, c))
				n++
			} else {
				s.abort(i)
			}
		}
		if s.slots[i].valid {
			r.Stage.CommitShadowDataOrtho(i, s.slots[i].data)
		}
	}
	if r.Targets != nil && r.Targets.ShadowDepthOrtho != nil {
		r.Stage.CommitTextureCascadedDepth(0, r.Targets.ShadowDepthOrtho)
	}
	return n
}
