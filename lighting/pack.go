// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"cmp"
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"deflight/conlog"
	"deflight/light"
	"deflight/math/mat"
	"deflight/math/vec"
	"deflight/render"
	"deflight/shading"
)

// Budgets caps the lights packed into one draw per category and the
// constant rows they may use together.
type Budgets struct {
	ShadowedCookied int
	Shadowed        int
	Cookied         int
	Simple          int
	Rows            int
}

func DefaultBudgets() Budgets {
	return Budgets{
		ShadowedCookied: 2,
		Shadowed:        3,
		Cookied:         3,
		Simple:          10,
		Rows:            shading.MaxLightDataRows,
	}
}

type category int

// Packing order of the categories.
const (
	catShadowedCookied category = iota
	catShadowed
	catCookied
	catSimple
	numCategories
)

func (c category) String() string {
	switch c {
	case catShadowedCookied:
		return "shadowed cookied"
	case catShadowed:
		return "shadowed"
	case catCookied:
		return "cookied"
	case catSimple:
		return "simple"
	}
	return "unknown"
}

func (c category) cookied() bool {
	return c == catShadowedCookied || c == catCookied
}

// uncookied is c without its cookie.
func (c category) uncookied() category {
	switch c {
	case catShadowedCookied:
		return catShadowed
	case catCookied:
		return catSimple
	}
	return c
}

func (b *Budgets) limit(c category) int {
	switch c {
	case catShadowedCookied:
		return b.ShadowedCookied
	case catShadowed:
		return b.Shadowed
	case catCookied:
		return b.Cookied
	}
	return b.Simple
}

// Constant rows per light.
const (
	rowsPointSimple   = 3
	rowsPointAdvanced = 6
	rowsSpotSimple    = 4
	rowsSpotAdvanced  = 9
)

func rowCount(t light.Type, c category) int {
	switch {
	case t == light.Spot && c == catSimple:
		return rowsSpotSimple
	case t == light.Spot:
		return rowsSpotAdvanced
	case c == catSimple:
		return rowsPointSimple
	}
	return rowsPointAdvanced
}

// packed is a light admitted into a draw. Slots are -1 when unused.
type packed struct {
	l      *light.Resolved
	cat    category
	shadow int
	cookie int
}

func (m *Manager) classify(l *light.Resolved) packed {
	p := packed{l: l, shadow: -1, cookie: -1}
	slot, shadowed := m.shadows[l.Light]
	if shadowed {
		p.shadow = slot
	}
	cookied := l.HasCookie()
	switch {
	case shadowed && cookied:
		p.cat = catShadowedCookied
	case shadowed:
		p.cat = catShadowed
	case cookied:
		p.cat = catCookied
	default:
		p.cat = catSimple
	}
	return p
}

// admit selects the lights of one draw from ls, which is sorted most
// significant first. Lights over a category budget or the row budget are
// dropped, so the furthest go first. Cookied lights past the cookie slots
// lose their cookie. The result is in packing order.
func (m *Manager) admit(ls []*light.Resolved) (ps []packed, dropped int) {
	var per [numCategories]int
	rows, cookies := 0, 0
	for _, l := range ls {
		p := m.classify(l)
		if p.cat.cookied() && cookies >= m.cookieSlots.Len() {
			conlog.WarnOnce("lighting.cookieslots", "out of cookie slots, light drawn without cookie\n")
			p.cat = p.cat.uncookied()
		}
		if per[p.cat] >= m.Budgets.limit(p.cat) {
			conlog.WarnOnce("lighting.budget."+p.cat.String(), "too many %s lights in one pass, dropping the furthest\n", p.cat)
			dropped++
			continue
		}
		n := rowCount(l.Type, p.cat)
		if rows+n > m.Budgets.Rows {
			conlog.WarnOnce("lighting.rows", "light data exceeds %d rows, dropping the furthest\n", m.Budgets.Rows)
			dropped++
			continue
		}
		per[p.cat]++
		rows += n
		if p.cat.cookied() {
			cookies++
		}
		ps = append(ps, p)
	}
	slices.SortStableFunc(ps, func(a, b packed) int { return cmp.Compare(a.cat, b.cat) })
	return ps, dropped
}

// writeLight appends the constant rows of p. The visible fade is baked into
// the colors.
//
//	0     origin, radius
//	1     diffuse, power
//	2     ambient, cos inner cone (spot)
//	3     forward, cos outer cone (spot only)
//
// advanced point lights add forward/shadow fade, right/shadow slot and
// up/cookie slot. Advanced spot lights add the world to texture matrix and
// shadow fade, shadow slot, cookie slot.
func writeLight(rows []mgl32.Vec4, p *packed, eye vec.Vec3) []mgl32.Vec4 {
	l := p.l
	fade := l.VisibleFade(eye)
	ambient := vec.Scale(fade, l.Ambient).Vec4(0)
	if l.Type == light.Spot {
		ambient[3] = math32.Cos(l.ConeInner)
	}
	rows = append(rows,
		l.Origin.Vec4(l.Radius),
		vec.Scale(fade, l.Diffuse).Vec4(l.Power),
		ambient)
	if l.Type == light.Spot {
		rows = append(rows, l.Forward.Vec4(math32.Cos(l.ConeOuter)))
	}
	if p.cat == catSimple {
		return rows
	}
	var shadowFade float32
	if p.shadow >= 0 {
		shadowFade = l.ShadowFade(eye)
	}
	if l.Type == light.Spot {
		r := mat.Rows(l.WorldToTexture)
		return append(rows, r[0], r[1], r[2], r[3],
			mgl32.Vec4{shadowFade, float32(p.shadow), float32(p.cookie), 0})
	}
	return append(rows,
		l.Forward.Vec4(shadowFade),
		l.Right.Vec4(float32(p.shadow)),
		l.Up.Vec4(float32(p.cookie)))
}

func (c *category) count(counts *shading.LightCounts) {
	switch *c {
	case catShadowedCookied:
		counts.ShadowedCookied++
	case catShadowed:
		counts.Shadowed++
	case catCookied:
		counts.Cookied++
	default:
		counts.Simple++
	}
}

// commit renders the cookies of ps into their slots and hands the packed
// rows to the shading stage.
func (m *Manager) commit(ctx *render.Context, ps []packed) {
	m.cookieSlots.Reset()
	m.rows = m.rows[:0]
	var counts shading.LightCounts
	for i := range ps {
		p := &ps[i]
		if p.cat.cookied() {
			// admit keeps the cookied lights within the pool
			slot, _ := m.cookieSlots.Acquire()
			p.l.Cookie.PreRender(ctx, slot)
			m.Stage.CommitTextureCookie(slot, p.l.Cookie.Target(slot))
			p.cookie = slot
		}
		m.rows = writeLight(m.rows, p, m.eye)
		p.cat.count(&counts)
	}
	m.Stage.CommitLightDataCommon(m.rows, counts)
	shading.Flush(m.Stage)
}
