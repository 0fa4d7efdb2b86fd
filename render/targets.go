// SPDX-License-Identifier: GPL-2.0-or-later

package render

import (
	"fmt"
	"log/slog"
)

const (
	MaxShadowProj  = 5
	MaxShadowDP    = 5
	NumCascades    = 2
	NumCookieSlots = 5

	// all cascades share one composited atlas
	CascadeAtlasWidth  = 4096
	CascadeAtlasHeight = 2048

	NumVolumetricsBuffers = 2
	NumRadiosityBuffers   = 2
)

const (
	NameNormals          = "_rt_defNormals"
	NameDepth            = "_rt_defDepth"
	NameLightAccum       = "_rt_defLightAccum"
	NameVolumePrepass    = "_rt_defVolumePrepass"
	NameShadowDepthOrtho = "_rt_ShadowDepth_ortho"
	NameShadowColorOrtho = "_rt_ShadowColor_ortho"

	nameVolumetrics     = "_rt_defVolumetrics_%02d"
	nameRadiosity       = "_rt_defRadiosity_%02d"
	nameShadowDepthProj = "_rt_ShadowDepth_proj_%02d"
	nameShadowColorProj = "_rt_ShadowColor_proj_%02d"
	nameShadowDepthDP   = "_rt_ShadowDepth_dp_%02d"
	nameShadowColorDP   = "_rt_ShadowColor_dp_%02d"
	nameProjectableVgui = "_rt_ProjVGui_%02d"
)

// Targets is the process wide set of named render targets. A target that
// could not be allocated stays nil and every pass using it is skipped.
type Targets struct {
	Normals       *Texture
	Depth         *Texture
	LightAccum    *Texture
	VolumePrepass *Texture
	Volumetrics   [NumVolumetricsBuffers]*Texture
	Radiosity     [NumRadiosityBuffers]*Texture

	ShadowDepthOrtho *Texture
	ShadowColorOrtho *Texture
	ShadowDepthProj  [MaxShadowProj]*Texture
	ShadowColorProj  [MaxShadowProj]*Texture
	ShadowDepthDP    [MaxShadowDP]*Texture
	ShadowColorDP    [MaxShadowDP]*Texture

	Projectable [NumCookieSlots]*Texture

	SpotRes  int
	PointRes int
}

// InitTargets allocates every target. Returns the number of targets that
// could not be created.
func InitTargets(a Allocator, width, height, spotRes, pointRes int) (*Targets, int) {
	t := &Targets{SpotRes: spotRes, PointRes: pointRes}
	missing := 0
	alloc := func(name string, w, h int, f Format) *Texture {
		tex, err := a.CreateRenderTarget(name, w, h, f)
		if err != nil || tex == nil {
			slog.Warn("could not create render target", slog.String("name", name), slog.Any("err", err))
			missing++
			return nil
		}
		return tex
	}
	t.Normals = alloc(NameNormals, width, height, FormatRGBA16F)
	t.Depth = alloc(NameDepth, width, height, FormatR32F)
	t.LightAccum = alloc(NameLightAccum, width, height, FormatRGBA16F)
	t.VolumePrepass = alloc(NameVolumePrepass, width, height, FormatRGBA16F)
	for i := range t.Volumetrics {
		t.Volumetrics[i] = alloc(fmt.Sprintf(nameVolumetrics, i), width/4, height/4, FormatRGBA16F)
	}
	for i := range t.Radiosity {
		t.Radiosity[i] = alloc(fmt.Sprintf(nameRadiosity, i), width/2, height/2, FormatRGBA16F)
	}
	t.ShadowDepthOrtho = alloc(NameShadowDepthOrtho, CascadeAtlasWidth, CascadeAtlasHeight, FormatDepth24)
	t.ShadowColorOrtho = alloc(NameShadowColorOrtho, CascadeAtlasWidth, CascadeAtlasHeight, FormatR32F)
	for i := 0; i < MaxShadowProj; i++ {
		t.ShadowDepthProj[i] = alloc(fmt.Sprintf(nameShadowDepthProj, i), spotRes, spotRes, FormatDepth24)
		t.ShadowColorProj[i] = alloc(fmt.Sprintf(nameShadowColorProj, i), spotRes, spotRes, FormatR32F)
	}
	for i := 0; i < MaxShadowDP; i++ {
		// front and back hemisphere stacked vertically
		t.ShadowDepthDP[i] = alloc(fmt.Sprintf(nameShadowDepthDP, i), pointRes, pointRes*2, FormatDepth24)
		t.ShadowColorDP[i] = alloc(fmt.Sprintf(nameShadowColorDP, i), pointRes, pointRes*2, FormatR32F)
	}
	for i := range t.Projectable {
		t.Projectable[i] = alloc(fmt.Sprintf(nameProjectableVgui, i), 512, 512, FormatRGBA8)
	}
	return t, missing
}

func at(ts []*Texture, i int) *Texture {
	if i < 0 || i >= len(ts) {
		return nil
	}
	return ts[i]
}

func (t *Targets) ShadowProj(i int) (depth, color *Texture) {
	return at(t.ShadowDepthProj[:], i), at(t.ShadowColorProj[:], i)
}

func (t *Targets) ShadowDP(i int) (depth, color *Texture) {
	return at(t.ShadowDepthDP[:], i), at(t.ShadowColorDP[:], i)
}

func (t *Targets) ProjectableTarget(i int) *Texture {
	return at(t.Projectable[:], i)
}

func (t *Targets) VolumetricsBuffer(i int) *Texture {
	return at(t.Volumetrics[:], i)
}

func (t *Targets) RadiosityBuffer(i int) *Texture {
	return at(t.Radiosity[:], i)
}
