// SPDX-License-Identifier: GPL-2.0-or-later

package light

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"deflight/bsp"
	"deflight/cookie"
	qmath "deflight/math"
	"deflight/math/vec"
)

const (
	ClassName       = "light_deferred"
	GlobalClassName = "light_deferred_global"
)

// Key names of the persisted record.
const (
	KeyOrigin      = "origin"
	KeyAngles      = "angles"
	KeyDiffuse     = "diffuse"
	KeyAmbient     = "ambient"
	KeyRadius      = "radius"
	KeyPower       = "power"
	KeyConeInner   = "spot_cone_inner"
	KeyConeOuter   = "spot_cone_outer"
	KeyVisDist     = "vis_dist"
	KeyVisRange    = "vis_range"
	KeyShadowDist  = "shadow_dist"
	KeyShadowRange = "shadow_range"
	KeyType        = "light_type"
	KeyFlags       = "spawnflags"
	KeyCookie      = "cookietex"
	KeyStyleAmount = "style_amount"
	KeyStyleSpeed  = "style_speed"
	KeyStyleSmooth = "style_smooth"
	KeyStyleRandom = "style_random"
	KeyStyleSeed   = "style_seed"
)

func parseVec(s string) (vec.Vec3, error) {
	var v vec.Vec3
	for i, f := range strings.Fields(s) {
		if i >= 3 {
			break
		}
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(x)
	}
	return v, nil
}

func formatVec(v vec.Vec3) string {
	return fmt.Sprintf("%.2f %.2f %.2f", v[0], v[1], v[2])
}

func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	return float32(f), err
}

// formatFloat drops the noise the degree conversion adds.
func formatFloat(f float32) string {
	r := math.Round(float64(f)*1e4) / 1e4
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	i, err := strconv.Atoi(s)
	if err == nil {
		return i, nil
	}
	// integer fields written as floats by some editors
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return 0, err
	}
	return int(f), nil
}

// FromEntity creates a light from a persisted record. Cone angles are in
// degrees in the record. A cookie name that cookies cannot create is
// dropped.
func FromEntity(e *bsp.Entity, names *cookie.Table, cookies CookieSource) (*Light, error) {
	t := Point
	if s, ok := e.Property(KeyType); ok {
		i, err := parseInt(s)
		if err != nil {
			return nil, errors.Wrapf(err, "light: bad %s", KeyType)
		}
		t = Type(i)
		if !t.valid() {
			return nil, errors.Errorf("light: unknown light type %d", i)
		}
	}
	l := New(t)
	if err := l.ApplyEntity(e, names, cookies); err != nil {
		return nil, err
	}
	return l, nil
}

// record holds the values of a persisted light until they are handed to
// the setters.
type record struct {
	typ                                        Type
	origin, angles, diffuse, ambient           vec.Vec3
	radius, power, inner, outer                float32
	visDist, visRange, shadowDist, shadowRange int
	flags                                      Flags
	cookie                                     int
	style                                      Style
}

func (l *Light) record() record {
	return record{
		typ:         l.typ,
		origin:      l.origin,
		angles:      l.angles,
		diffuse:     l.diffuse,
		ambient:     l.ambient,
		radius:      l.radius,
		power:       l.power,
		inner:       l.coneInner,
		outer:       l.coneOuter,
		visDist:     l.visDist,
		visRange:    l.visRange,
		shadowDist:  l.shadowDist,
		shadowRange: l.shadowRange,
		flags:       l.flags,
		cookie:      l.cookie,
		style:       l.style,
	}
}

// ApplyEntity sets every known key of e on the light and marks everything
// dirty. Unknown keys are ignored. On error the light is left unchanged.
func (l *Light) ApplyEntity(e *bsp.Entity, names *cookie.Table, cookies CookieSource) error {
	r := l.record()
	for _, k := range e.PropertyNames() {
		v, _ := e.Property(k)
		if err := r.applyKey(k, v, names, cookies); err != nil {
			return errors.Wrapf(err, "light: bad %s %q", k, v)
		}
	}
	l.SetType(r.typ)
	l.SetOrigin(r.origin)
	l.SetAngles(r.angles)
	l.SetDiffuse(r.diffuse)
	l.SetAmbient(r.ambient)
	l.SetRadius(r.radius)
	l.SetPower(r.power)
	l.SetSpotCone(r.inner, r.outer)
	l.SetVisibility(r.visDist, r.visRange)
	l.SetShadowDistance(r.shadowDist, r.shadowRange)
	l.SetFlags(r.flags)
	l.SetCookieIndex(r.cookie)
	l.SetStyle(r.style)
	l.dirty |= DirtyAll
	return nil
}

func (r *record) applyKey(k, v string, names *cookie.Table, cookies CookieSource) error {
	var err error
	switch k {
	case KeyOrigin:
		r.origin, err = parseVec(v)
	case KeyAngles:
		r.angles, err = parseVec(v)
	case KeyDiffuse:
		r.diffuse, err = parseVec(v)
	case KeyAmbient:
		r.ambient, err = parseVec(v)
	case KeyRadius:
		r.radius, err = parseFloat(v)
	case KeyPower:
		r.power, err = parseFloat(v)
	case KeyConeInner:
		var d float32
		d, err = parseFloat(v)
		r.inner = qmath.Deg2Rad(d)
	case KeyConeOuter:
		var d float32
		d, err = parseFloat(v)
		r.outer = qmath.Deg2Rad(d)
	case KeyVisDist:
		r.visDist, err = parseInt(v)
	case KeyVisRange:
		r.visRange, err = parseInt(v)
	case KeyShadowDist:
		r.shadowDist, err = parseInt(v)
	case KeyShadowRange:
		r.shadowRange, err = parseInt(v)
	case KeyType:
		var i int
		i, err = parseInt(v)
		if err == nil {
			if !Type(i).valid() {
				return errors.Errorf("unknown light type %d", i)
			}
			r.typ = Type(i)
		}
	case KeyFlags:
		var i int
		i, err = parseInt(v)
		r.flags = Flags(i)
	case KeyCookie:
		r.cookie = 0
		if v != "" && names != nil && cookies != nil && cookies.Valid(v) {
			r.cookie = names.Add(v)
		}
	case KeyStyleAmount:
		r.style.Amount, err = parseFloat(v)
	case KeyStyleSpeed:
		r.style.Speed, err = parseFloat(v)
	case KeyStyleSmooth:
		r.style.Smooth, err = parseFloat(v)
	case KeyStyleRandom:
		r.style.Random, err = parseFloat(v)
	case KeyStyleSeed:
		r.style.Seed, err = parseInt(v)
	}
	return err
}

// Entity writes the light as a persisted record.
func (l *Light) Entity(names *cookie.Table) *bsp.Entity {
	e := bsp.NewEntityFromPairs(
		"classname", ClassName,
		KeyOrigin, formatVec(l.origin),
		KeyAngles, formatVec(l.angles),
		KeyDiffuse, formatVec(l.diffuse),
		KeyAmbient, formatVec(l.ambient),
		KeyRadius, formatFloat(l.radius),
		KeyPower, formatFloat(l.power),
		KeyConeInner, formatFloat(qmath.Rad2Deg(l.coneInner)),
		KeyConeOuter, formatFloat(qmath.Rad2Deg(l.coneOuter)),
		KeyVisDist, strconv.Itoa(l.visDist),
		KeyVisRange, strconv.Itoa(l.visRange),
		KeyShadowDist, strconv.Itoa(l.shadowDist),
		KeyShadowRange, strconv.Itoa(l.shadowRange),
		KeyType, strconv.Itoa(int(l.typ)),
		KeyFlags, strconv.Itoa(int(l.flags)),
	)
	if names != nil {
		if n, ok := names.Name(l.cookie); ok {
			e.SetProperty(KeyCookie, n)
		}
	}
	e.SetProperty(KeyStyleAmount, formatFloat(l.style.Amount))
	e.SetProperty(KeyStyleSpeed, formatFloat(l.style.Speed))
	e.SetProperty(KeyStyleSmooth, formatFloat(l.style.Smooth))
	e.SetProperty(KeyStyleRandom, formatFloat(l.style.Random))
	e.SetProperty(KeyStyleSeed, strconv.Itoa(l.style.Seed))
	return e
}
