// SPDX-License-Identifier: GPL-2.0-or-later

package lightfile

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"deflight/cookie"
	"deflight/light"
)

// Watcher reloads a light file whenever it changes on disk. Reloaded sets are
// picked up with Poll from the frame loop, never while a frame is drawn.
type Watcher struct {
	path    string
	names   *cookie.Table
	cookies light.CookieSource

	w       *fsnotify.Watcher
	changes chan []*light.Light
	done    chan struct{}
	wg      sync.WaitGroup
}

// Watch starts watching path. The directory is watched so editors that
// replace the file are seen too.
func Watch(path string, names *cookie.Table, cookies light.CookieSource) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		path:    filepath.Clean(path),
		names:   names,
		cookies: cookies,
		w:       fw,
		changes: make(chan []*light.Light, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			ls, err := Load(w.path, w.names, w.cookies)
			if err != nil {
				slog.Error("could not reload light file", slog.String("path", w.path), slog.Any("err", err))
				continue
			}
			w.publish(ls)
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			slog.Error("light file watcher", slog.Any("err", err))
		}
	}
}

// publish keeps only the newest set if the frame loop did not poll yet.
func (w *Watcher) publish(ls []*light.Light) {
	for {
		select {
		case w.changes <- ls:
			return
		default:
		}
		select {
		case old := <-w.changes:
			for _, l := range old {
				l.Release()
			}
		default:
		}
	}
}

// Poll returns the latest reloaded set, if any.
func (w *Watcher) Poll() ([]*light.Light, bool) {
	select {
	case ls := <-w.changes:
		return ls, true
	default:
		return nil, false
	}
}

func (w *Watcher) Close() error {
	close(w.done)
	err := w.w.Close()
	w.wg.Wait()
	return err
}
