// SPDX-License-Identifier: GPL-2.0-or-later

package shading

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gopxl/mainthread/v2"

	"deflight/math/vec"
	"deflight/render"
)

// Queue is a Stage that records commits and forwards them in order to the
// wrapped stage on Flush. Arguments are copied when committed.
type Queue struct {
	stage    Stage
	dispatch func(func())

	mu      sync.Mutex
	pending []func(Stage)
}

// NewQueue returns a queue that runs flushed commits on the calling
// goroutine.
func NewQueue(stage Stage) *Queue {
	return &Queue{stage: stage, dispatch: func(f func()) { f() }}
}

// NewRenderThreadQueue returns a queue that hands flushed commits to the
// render thread without waiting for them. mainthread.Run must be active.
func NewRenderThreadQueue(stage Stage) *Queue {
	return &Queue{stage: stage, dispatch: mainthread.CallNonBlock}
}

func (q *Queue) push(f func(Stage)) {
	q.mu.Lock()
	q.pending = append(q.pending, f)
	q.mu.Unlock()
}

// Pending returns the number of commits waiting for Flush.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) Flush() {
	q.mu.Lock()
	p := q.pending
	q.pending = nil
	q.mu.Unlock()
	if len(p) == 0 {
		return
	}
	stage := q.stage
	q.dispatch(func() {
		for _, f := range p {
			f(stage)
		}
	})
}

func (q *Queue) CommitOrigin(origin vec.Vec3) {
	q.push(func(s Stage) { s.CommitOrigin(origin) })
}

func (q *Queue) CommitViewForward(fwd vec.Vec3) {
	q.push(func(s Stage) { s.CommitViewForward(fwd) })
}

func (q *Queue) CommitZDists(zNear, zFar float32) {
	q.push(func(s Stage) { s.CommitZDists(zNear, zFar) })
}

func (q *Queue) CommitZScale(zFar float32) {
	q.push(func(s Stage) { s.CommitZScale(zFar) })
}

func (q *Queue) CommitFrustumDeltas(m mgl32.Mat4) {
	q.push(func(s Stage) { s.CommitFrustumDeltas(m) })
}

func (q *Queue) CommitShadowDataOrtho(index int, d ShadowDataOrtho) {
	q.push(func(s Stage) { s.CommitShadowDataOrtho(index, d) })
}

func (q *Queue) CommitShadowDataProj(index int, d ShadowProj) {
	q.push(func(s Stage) { s.CommitShadowDataProj(index, d) })
}

func (q *Queue) CommitShadowDataGeneral(d ShadowGeneral) {
	q.push(func(s Stage) { s.CommitShadowDataGeneral(d) })
}

func (q *Queue) CommitVolumeData(d VolumeData) {
	q.push(func(s Stage) { s.CommitVolumeData(d) })
}

func (q *Queue) CommitLightDataGlobal(d GlobalLight) {
	q.push(func(s Stage) { s.CommitLightDataGlobal(d) })
}

func (q *Queue) CommitLightDataCommon(rows []mgl32.Vec4, counts LightCounts) {
	rows = append([]mgl32.Vec4(nil), rows...)
	q.push(func(s Stage) { s.CommitLightDataCommon(rows, counts) })
}

func (q *Queue) CommitTextureGeneral(normals, depth, lightAccum *render.Texture) {
	q.push(func(s Stage) { s.CommitTextureGeneral(normals, depth, lightAccum) })
}

func (q *Queue) CommitTextureCascadedDepth(index int, t *render.Texture) {
	q.push(func(s Stage) { s.CommitTextureCascadedDepth(index, t) })
}

func (q *Queue) CommitTextureDualParaboloidDepth(index int, t *render.Texture) {
	q.push(func(s Stage) { s.CommitTextureDualParaboloidDepth(index, t) })
}

func (q *Queue) CommitTextureProjectedDepth(index int, t *render.Texture) {
	q.push(func(s Stage) { s.CommitTextureProjectedDepth(index, t) })
}

func (q *Queue) CommitTextureCookie(index int, t *render.Texture) {
	q.push(func(s Stage) { s.CommitTextureCookie(index, t) })
}

func (q *Queue) CommitTextureVolumePrepass(t *render.Texture) {
	q.push(func(s Stage) { s.CommitTextureVolumePrepass(t) })
}
