// SPDX-License-Identifier: GPL-2.0-or-later

package render

type Material int

const (
	MatLightGlobal Material = iota
	MatLightPointWorld
	MatLightPointFullscreen
	MatLightSpotWorld
	MatLightSpotFullscreen
	MatLightVolumePointWorld
	MatLightVolumePointFullscreen
	MatLightVolumeSpotWorld
	MatLightVolumeSpotFullscreen
	MatLightVolumePrepass
	MatLightVolumeBlend
	MatRadiosityGlobal
	MatRadiosityPropagate0
	MatRadiosityPropagate1
	MatRadiosityBlur0
	MatRadiosityBlur1
	MatComposite
	MatWireframeDebug
	NumMaterials
)

var materialNames = [NumMaterials]string{
	"deferred/light_global",
	"deferred/light_point_world",
	"deferred/light_point_fullscreen",
	"deferred/light_spot_world",
	"deferred/light_spot_fullscreen",
	"deferred/light_volume_point_world",
	"deferred/light_volume_point_fullscreen",
	"deferred/light_volume_spot_world",
	"deferred/light_volume_spot_fullscreen",
	"deferred/light_volume_prepass",
	"deferred/light_volume_blend",
	"deferred/radiosity_global",
	"deferred/radiosity_propagate_0",
	"deferred/radiosity_propagate_1",
	"deferred/radiosity_blur_0",
	"deferred/radiosity_blur_1",
	"deferred/composite",
	"deferred/wireframe_debug",
}

func (m Material) String() string {
	if m < 0 || m >= NumMaterials {
		return "unknown"
	}
	return materialNames[m]
}
