// SPDX-License-Identifier: GPL-2.0-or-later

package light

import (
	"deflight/cookie"
)

// CookieSource creates cookie projections by name. Valid reports whether
// Create would succeed.
type CookieSource interface {
	Create(name string) cookie.Projection
	Valid(name string) bool
}

// UpdateCookie replaces the projection when the cookie index changed. If the
// name is not known yet the cookie stays dirty.
func (l *Light) UpdateCookie(names *cookie.Table, src CookieSource) {
	if l.cookie == 0 {
		l.ClearCookie()
		l.cookieIndex = 0
		l.dirty &^= DirtyCookie
		return
	}
	if l.cookieIndex == l.cookie && l.cookieProj != nil && l.cookieProj.Ready() {
		l.dirty &^= DirtyCookie
		return
	}
	if names == nil {
		return
	}
	name, ok := names.Name(l.cookie)
	if !ok {
		return
	}
	l.ClearCookie()
	if src != nil {
		l.cookieProj = src.Create(name)
	}
	l.cookieIndex = l.cookie
	l.dirty &^= DirtyCookie
}

// SetCookie hands ownership of p to the light.
func (l *Light) SetCookie(p cookie.Projection) {
	l.ClearCookie()
	l.cookieProj = p
}

func (l *Light) ClearCookie() {
	if l.cookieProj != nil {
		l.cookieProj.Release()
		l.cookieProj = nil
	}
}

func (l *Light) Cookie() cookie.Projection {
	return l.cookieProj
}

func (l *Light) CookieReady() bool {
	return l.cookieProj != nil && l.cookieProj.Ready()
}
