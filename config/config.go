// SPDX-License-Identifier: GPL-2.0-or-later

// Package config reads the runner configuration file.
//
//	width = 1280
//	height = 720
//	map = "maps/start.bsp"
//	lights = "maps/start.lights"
//
//	[cvars]
//	deferred_radiosity_enable = 1
//	deferred_override_globallight_diffuse = "1 0.9 0.8"
//
//	[[cascade]]
//	size = 1024
//	offset = 2048
//	far_z = 4096
//	res = 2048
package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"deflight/cvar"
	"deflight/view"
)

type Cascade struct {
	Size        float32 `toml:"size"`
	Offset      float32 `toml:"offset"`
	FarZ        float32 `toml:"far_z"`
	SlopeMin    float32 `toml:"slope_min,omitempty"`
	SlopeMax    float32 `toml:"slope_max,omitempty"`
	NormalMax   float32 `toml:"normal_max,omitempty"`
	Res         int     `toml:"res"`
	UpdateDelay float32 `toml:"update_delay,omitempty"`
	AtlasX      int     `toml:"atlas_x,omitempty"`
	AtlasY      int     `toml:"atlas_y,omitempty"`
}

type Config struct {
	Width  int    `toml:"width,omitempty"`
	Height int    `toml:"height,omitempty"`
	Map    string `toml:"map,omitempty"`
	// Paks are searched for Map, later ones first.
	Paks   []string `toml:"paks,omitempty"`
	Lights string   `toml:"lights,omitempty"`
	// Exec is console text run before the first frame.
	Exec string `toml:"exec,omitempty"`
	// Cvars maps cvar names to strings, numbers or booleans.
	Cvars    map[string]any `toml:"cvars,omitempty"`
	Cascades []Cascade      `toml:"cascade,omitempty"`
}

func Default() *Config {
	return &Config{Width: 1280, Height: 720}
}

// Parse reads a config from data. Missing values keep their defaults,
// unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	c := Default()
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(c); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return nil, errors.Errorf("config: %d:%d: %v", row, col, de)
		}
		return nil, errors.Wrap(err, "config")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("config: bad size %dx%d", c.Width, c.Height)
	}
	for i, cs := range c.Cascades {
		if cs.Size <= 0 || cs.FarZ <= 0 || cs.Res <= 0 {
			return errors.Errorf("config: cascade %d needs size, far_z and res", i)
		}
	}
	return nil
}

// Write encodes c in the format Parse reads.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func cvarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		if x {
			return "1", true
		}
		return "0", true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	}
	return "", false
}

// ApplyCvars sets every listed cvar. Unknown cvars and values of other
// types are logged and skipped. It returns the number of cvars set.
func (c *Config) ApplyCvars() int {
	names := make([]string, 0, len(c.Cvars))
	for n := range c.Cvars {
		names = append(names, n)
	}
	sort.Strings(names)
	n := 0
	for _, name := range names {
		cv, ok := cvar.Get(name)
		if !ok {
			slog.Warn("config: unknown cvar", slog.String("name", name))
			continue
		}
		s, ok := cvarString(c.Cvars[name])
		if !ok {
			slog.Warn("config: bad cvar value", slog.String("name", name), slog.String("type", fmt.Sprintf("%T", c.Cvars[name])))
			continue
		}
		cv.SetByString(s)
		n++
	}
	return n
}

// CascadeTable returns the configured cascades or the built in table.
func (c *Config) CascadeTable() []view.Cascade {
	if len(c.Cascades) == 0 {
		return view.DefaultCascades()
	}
	r := make([]view.Cascade, len(c.Cascades))
	for i, cs := range c.Cascades {
		r[i] = view.Cascade(cs)
	}
	return r
}
