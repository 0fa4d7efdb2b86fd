// SPDX-License-Identifier: GPL-2.0-or-later

package shading

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"deflight/math/vec"
	"deflight/render"
)

const (
	MaxLightDataRows = 193
)

// State is a Stage that keeps the last committed values. Backends read it
// when binding constants.
type State struct {
	mu sync.Mutex

	origin         vec.Vec3
	forward        vec.Vec3
	zNear, zFar    float32
	zScale         float32
	frustumDeltas  mgl32.Mat4
	ortho          [render.NumCascades]ShadowDataOrtho
	proj           [render.MaxShadowProj]ShadowProj
	general        ShadowGeneral
	volume         VolumeData
	global         GlobalLight
	lightRows      []mgl32.Vec4
	counts         LightCounts
	normals        *render.Texture
	depth          *render.Texture
	lightAccum     *render.Texture
	cascadedDepth  [render.NumCascades]*render.Texture
	dpDepth        [render.MaxShadowDP]*render.Texture
	projDepth      [render.MaxShadowProj]*render.Texture
	cookies        [render.NumCookieSlots]*render.Texture
	volumePrepass  *render.Texture
	commitsByFrame int
}

func NewState() *State {
	return &State{
		general: DefaultShadowGeneral(),
		global:  DefaultGlobalLight(),
	}
}

func (s *State) lock() func() {
	s.mu.Lock()
	s.commitsByFrame++
	return s.mu.Unlock
}

func (s *State) CommitOrigin(origin vec.Vec3) {
	defer s.lock()()
	s.origin = origin
}

func (s *State) CommitViewForward(fwd vec.Vec3) {
	defer s.lock()()
	s.forward = fwd
}

func (s *State) CommitZDists(zNear, zFar float32) {
	defer s.lock()()
	s.zNear, s.zFar = zNear, zFar
}

func (s *State) CommitZScale(zFar float32) {
	defer s.lock()()
	s.zScale = zFar
}

func (s *State) CommitFrustumDeltas(m mgl32.Mat4) {
	defer s.lock()()
	s.frustumDeltas = m
}

func (s *State) CommitShadowDataOrtho(index int, d ShadowDataOrtho) {
	defer s.lock()()
	if index >= 0 && index < len(s.ortho) {
		s.ortho[index] = d
	}
}

func (s *State) CommitShadowDataProj(index int, d ShadowProj) {
	defer s.lock()()
	if index >= 0 && index < len(s.proj) {
		s.proj[index] = d
	}
}

func (s *State) CommitShadowDataGeneral(d ShadowGeneral) {
	defer s.lock()()
	s.general = d
}

func (s *State) CommitVolumeData(d VolumeData) {
	defer s.lock()()
	s.volume = d
}

func (s *State) CommitLightDataGlobal(d GlobalLight) {
	defer s.lock()()
	s.global = d
}

func (s *State) CommitLightDataCommon(rows []mgl32.Vec4, counts LightCounts) {
	defer s.lock()()
	if len(rows) > MaxLightDataRows {
		rows = rows[:MaxLightDataRows]
	}
	s.lightRows = append(s.lightRows[:0], rows...)
	s.counts = counts
}

func (s *State) CommitTextureGeneral(normals, depth, lightAccum *render.Texture) {
	defer s.lock()()
	s.normals, s.depth, s.lightAccum = normals, depth, lightAccum
}

func setAt(ts []*render.Texture, i int, t *render.Texture) {
	if i >= 0 && i < len(ts) {
		ts[i] = t
	}
}

func (s *State) CommitTextureCascadedDepth(index int, t *render.Texture) {
	defer s.lock()()
	setAt(s.cascadedDepth[:], index, t)
}

func (s *State) CommitTextureDualParaboloidDepth(index int, t *render.Texture) {
	defer s.lock()()
	setAt(s.dpDepth[:], index, t)
}

func (s *State) CommitTextureProjectedDepth(index int, t *render.Texture) {
	defer s.lock()()
	setAt(s.projDepth[:], index, t)
}

func (s *State) CommitTextureCookie(index int, t *render.Texture) {
	defer s.lock()()
	setAt(s.cookies[:], index, t)
}

func (s *State) CommitTextureVolumePrepass(t *render.Texture) {
	defer s.lock()()
	s.volumePrepass = t
}

func (s *State) Origin() vec.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origin
}

func (s *State) ViewForward() vec.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forward
}

func (s *State) ZDists() (float32, float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zNear, s.zFar
}

func (s *State) ZScale() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zScale
}

func (s *State) FrustumDeltas() mgl32.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frustumDeltas
}

func (s *State) ShadowDataOrtho(index int) ShadowDataOrtho {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ortho[index]
}

func (s *State) ShadowDataProj(index int) ShadowProj {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proj[index]
}

func (s *State) ShadowDataGeneral() ShadowGeneral {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.general
}

func (s *State) VolumeData() VolumeData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *State) LightDataGlobal() GlobalLight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.global
}

// LightData returns a copy of the packed light rows and their counts.
func (s *State) LightData() ([]mgl32.Vec4, LightCounts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mgl32.Vec4(nil), s.lightRows...), s.counts
}

func (s *State) TextureGeneral() (normals, depth, lightAccum *render.Texture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.normals, s.depth, s.lightAccum
}

func (s *State) TextureProjectedDepth(index int) *render.Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projDepth[index]
}

func (s *State) TextureDualParaboloidDepth(index int) *render.Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dpDepth[index]
}

func (s *State) TextureCascadedDepth(index int) *render.Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cascadedDepth[index]
}

func (s *State) TextureCookie(index int) *render.Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookies[index]
}

func (s *State) TextureVolumePrepass() *render.Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volumePrepass
}

// Commits returns the number of commits received so far.
func (s *State) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitsByFrame
}
