// SPDX-License-Identifier: GPL-2.0-or-later

package cvars

import (
	"deflight/conlog"
	"deflight/cvar"
)

var (
	DeferredLightsEnable           *cvar.Cvar
	DeferredLightsWorldEnable      *cvar.Cvar
	DeferredLightsDebug            *cvar.Cvar
	DeferredLightsStyleEnable      *cvar.Cvar
	DeferredVolumetricsEnable      *cvar.Cvar
	DeferredRadiosityEnable        *cvar.Cvar
	DeferredRadiosityPasses        *cvar.Cvar
	DeferredShadowResSpot          *cvar.Cvar
	DeferredShadowResPoint         *cvar.Cvar
	DeferredShadowsEnable          *cvar.Cvar
	DeferredCascadeEnable          *cvar.Cvar
	DeferredSkyboxEnable           *cvar.Cvar
	DeferredOverrideGlobalLight    *cvar.Cvar
	DeferredOverrideGlobalShadow   *cvar.Cvar
	DeferredOverrideGlobalDiffuse  *cvar.Cvar
	DeferredOverrideGlobalAmbientH *cvar.Cvar
	DeferredOverrideGlobalAmbientL *cvar.Cvar
	Developer                      *cvar.Cvar
	Fov                            *cvar.Cvar
	GlFarClip                      *cvar.Cvar
)

func init() {
	DeferredLightsEnable = cvar.MustRegister("deferred_lights_enable", "1", cvar.ARCHIVE)
	DeferredLightsWorldEnable = cvar.MustRegister("deferred_lights_world_enable", "1", cvar.NONE)
	DeferredLightsDebug = cvar.MustRegister("deferred_lights_debug", "0", cvar.NONE)
	DeferredLightsStyleEnable = cvar.MustRegister("deferred_lights_style_enable", "1", cvar.ARCHIVE)
	DeferredVolumetricsEnable = cvar.MustRegister("deferred_volumetrics_enable", "1", cvar.ARCHIVE)
	DeferredRadiosityEnable = cvar.MustRegister("deferred_radiosity_enable", "0", cvar.ARCHIVE)
	DeferredRadiosityPasses = cvar.MustRegister("deferred_radiosity_propagate_count", "1", cvar.ARCHIVE)
	DeferredShadowResSpot = cvar.MustRegister("deferred_shadow_res_spot", "256", cvar.ARCHIVE)
	DeferredShadowResPoint = cvar.MustRegister("deferred_shadow_res_point", "256", cvar.ARCHIVE)
	DeferredShadowsEnable = cvar.MustRegister("deferred_shadows_enable", "1", cvar.ARCHIVE)
	DeferredCascadeEnable = cvar.MustRegister("deferred_cascade_enable", "1", cvar.ARCHIVE)
	DeferredSkyboxEnable = cvar.MustRegister("deferred_skybox_enable", "1", cvar.NONE)

	// replace the global light of the map, colors are "r g b"
	DeferredOverrideGlobalLight = cvar.MustRegister("deferred_override_globallight_enable", "0", cvar.NONE)
	DeferredOverrideGlobalShadow = cvar.MustRegister("deferred_override_globallight_shadow_enable", "1", cvar.NONE)
	DeferredOverrideGlobalDiffuse = cvar.MustRegister("deferred_override_globallight_diffuse", "1 1 1", cvar.NONE)
	DeferredOverrideGlobalAmbientH = cvar.MustRegister("deferred_override_globallight_ambient_high", "0 0.04 0.08", cvar.NONE)
	DeferredOverrideGlobalAmbientL = cvar.MustRegister("deferred_override_globallight_ambient_low", "0 0.07 0.09", cvar.NONE)

	Developer = cvar.MustRegister("developer", "0", cvar.NONE)
	Fov = cvar.MustRegister("fov", "90", cvar.ARCHIVE)
	GlFarClip = cvar.MustRegister("gl_farclip", "16384", cvar.ARCHIVE)

	conlog.SetDeveloper(Developer.Bool)
}
