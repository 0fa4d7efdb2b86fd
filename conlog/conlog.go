// SPDX-License-Identifier: GPL-2.0-or-later

package conlog

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var (
	p  func(string, ...interface{}) = slogPrintf
	sp func(string, ...interface{}) = slogPrintf

	developer func() bool = func() bool { return false }

	warnedMu sync.Mutex
	warned   = make(map[string]bool)
)

func slogPrintf(format string, v ...interface{}) {
	slog.Info(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

func SetPrintf(f func(string, ...interface{})) {
	p = f
}
func SetSavePrintf(f func(string, ...interface{})) {
	sp = f
}

// SetDeveloper installs the check gating DPrintf.
func SetDeveloper(f func() bool) {
	developer = f
}

func Printf(format string, v ...interface{}) {
	p(format, v...)
}

func SafePrintf(format string, v ...interface{}) {
	sp(format, v...)
}

// DPrintf prints only in developer mode.
func DPrintf(format string, v ...interface{}) {
	if !developer() {
		return
	}
	p(format, v...)
}

// WarnOnce prints the message the first time key is seen.
func WarnOnce(key string, format string, v ...interface{}) {
	warnedMu.Lock()
	seen := warned[key]
	warned[key] = true
	warnedMu.Unlock()
	if seen {
		return
	}
	slog.Warn(strings.TrimRight(fmt.Sprintf(format, v...), "\n"), "key", key)
}

// ResetWarnings forgets all keys passed to WarnOnce.
func ResetWarnings() {
	warnedMu.Lock()
	warned = make(map[string]bool)
	warnedMu.Unlock()
}
