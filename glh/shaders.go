// SPDX-License-Identifier: GPL-2.0-or-later

package glh

import (
	"deflight/render"
)

const meshVertex = `
#version 450 core
layout(location = 0) in vec3 a_pos;
uniform mat4 u_viewProj;
uniform mat4 u_world;
void main() {
	gl_Position = u_viewProj * u_world * vec4(a_pos, 1.0);
}
` + "\x00"

const fullscreenVertex = `
#version 450 core
void main() {
	vec2 p = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2);
	gl_Position = vec4(p * 2.0 - 1.0, 0.0, 1.0);
}
` + "\x00"

// gbufferSource reconstructs the world position from the linear depth and
// the frustum deltas.
const gbufferSource = `
#version 450 core
layout(binding = 0) uniform sampler2D u_normals;
layout(binding = 1) uniform sampler2D u_depth;
uniform vec3 u_origin;
uniform vec4 u_deltas[3];
uniform vec4 u_viewport;
out vec4 o_color;

vec2 screenUV() {
	return (gl_FragCoord.xy - u_viewport.xy) / u_viewport.zw;
}

vec3 worldPos(vec2 uv) {
	vec2 ndc = uv * 2.0 - 1.0;
	vec3 ray = u_deltas[0].xyz + ndc.x * u_deltas[1].xyz + ndc.y * u_deltas[2].xyz;
	return u_origin + ray * texture(u_depth, uv).r;
}
`

const globalFragment = gbufferSource + `
uniform vec4 u_diffuse;
uniform vec4 u_ambientHigh;
uniform vec4 u_ambientLow;
uniform vec4 u_direction;
void main() {
	vec3 n = normalize(texture(u_normals, screenUV()).xyz);
	float ndotl = max(dot(n, u_direction.xyz), 0.0);
	vec3 amb = mix(u_ambientLow.rgb, u_ambientHigh.rgb, n.z * 0.5 + 0.5);
	o_color = vec4(u_diffuse.rgb * ndotl + amb, 1.0);
}
` + "\x00"

// lightFragment walks the packed light rows category by category. Shadow
// and cookie rows are skipped, only the light shape is evaluated.
const lightFragment = gbufferSource + `
uniform vec4 u_rows[193];
uniform ivec4 u_counts;
uniform int u_lightType;

vec3 shade(int r, vec3 pos, vec3 n, bool spot) {
	vec3 toLight = u_rows[r].xyz - pos;
	float radius = u_rows[r].w;
	float dist = length(toLight);
	vec3 l = toLight / max(dist, 0.001);
	float att = pow(clamp(1.0 - dist / radius, 0.0, 1.0), u_rows[r + 1].w);
	if (spot) {
		float cosInner = u_rows[r + 2].w;
		float cosOuter = u_rows[r + 3].w;
		att *= smoothstep(cosOuter, cosInner, dot(-l, u_rows[r + 3].xyz));
	}
	return (u_rows[r + 1].rgb * max(dot(n, l), 0.0) + u_rows[r + 2].rgb) * att;
}

void main() {
	vec2 uv = screenUV();
	vec3 n = normalize(texture(u_normals, uv).xyz);
	vec3 pos = worldPos(uv);
	bool spot = u_lightType == 1;
	int simple = spot ? 4 : 3;
	int advanced = spot ? 9 : 6;
	vec3 c = vec3(0.0);
	int r = 0;
	for (int cat = 0; cat < 4; cat++) {
		int stride = cat == 3 ? simple : advanced;
		for (int i = 0; i < u_counts[cat]; i++) {
			c += shade(r, pos, n, spot);
			r += stride;
		}
	}
	o_color = vec4(c, 1.0);
}
` + "\x00"

const compositeFragment = `
#version 450 core
layout(binding = 2) uniform sampler2D u_lightAccum;
uniform vec4 u_viewport;
out vec4 o_color;
void main() {
	vec3 c = texture(u_lightAccum, (gl_FragCoord.xy - u_viewport.xy) / u_viewport.zw).rgb;
	o_color = vec4(c / (1.0 + c), 1.0);
}
` + "\x00"

const colorFragment = `
#version 450 core
uniform vec4 u_color;
out vec4 o_color;
void main() {
	o_color = u_color;
}
` + "\x00"

type shaderSource struct {
	vertex, fragment string
}

// Materials without a source are reported missing and skipped by the
// light pipeline.
var materialSources = map[render.Material]shaderSource{
	render.MatLightGlobal:          {fullscreenVertex, globalFragment},
	render.MatLightPointWorld:      {meshVertex, lightFragment},
	render.MatLightPointFullscreen: {fullscreenVertex, lightFragment},
	render.MatLightSpotWorld:       {meshVertex, lightFragment},
	render.MatLightSpotFullscreen:  {fullscreenVertex, lightFragment},
	render.MatComposite:            {fullscreenVertex, compositeFragment},
	render.MatWireframeDebug:       {meshVertex, colorFragment},
}
