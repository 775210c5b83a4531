// Package config loads the sketchd settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"VRBoard/internal/capture"
	"VRBoard/internal/command"
	"VRBoard/internal/engine"
	"VRBoard/internal/geom"
	"VRBoard/internal/selection"
	"VRBoard/internal/state"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
)

// Config mirrors the TOML file. Distances are meters and times are seconds.
type Config struct {
	Capture   Capture   `toml:"capture"`
	Selection Selection `toml:"selection"`
	Transform Transform `toml:"transform"`
	Undo      Undo      `toml:"undo"`
	Link      Link      `toml:"link"`
	Engine    Engine    `toml:"engine"`
	Surfaces  []Surface `toml:"surfaces"`
}

type Capture struct {
	Mode            string  `toml:"mode"`
	MinDistance     float32 `toml:"min_distance"`
	SurfaceOffset   float32 `toml:"surface_offset"`
	SurfaceRelative bool    `toml:"surface_relative"`
	ContactRange    float32 `toml:"contact_range"`
	TipColor        string  `toml:"tip_color"`
}

type Selection struct {
	Radius          float32 `toml:"radius"`
	MaxRayLength    float32 `toml:"max_ray_length"`
	SwitchLockTime  float64 `toml:"switch_lock_time"`
	SwitchThreshold float32 `toml:"switch_threshold"`
	DeselectDelay   float64 `toml:"deselect_delay"`
	HoverTint       string  `toml:"hover_tint"`
	HoverBlend      float64 `toml:"hover_blend"`
	SelectColor     string  `toml:"select_color"`
}

type Transform struct {
	RoundResolution   int     `toml:"round_resolution"`
	SimplifyTolerance float32 `toml:"simplify_tolerance"`
	RecolorColor      string  `toml:"recolor_color"`
}

type Undo struct {
	MaxSteps int `toml:"max_steps"`
}

type Link struct {
	Addr    string `toml:"addr"`
	MDNS    bool   `toml:"mdns"`
	Service string `toml:"service"`
}

type Engine struct {
	TickRate        float64 `toml:"tick_rate"`
	DefaultWorkflow string  `toml:"default_workflow"`
}

// Surface places one tagged drawing plane in the scene.
type Surface struct {
	Tag        string     `toml:"tag"`
	Origin     [3]float32 `toml:"origin"`
	Normal     [3]float32 `toml:"normal"`
	Up         [3]float32 `toml:"up"`
	HalfWidth  float32    `toml:"half_width"`
	HalfHeight float32    `toml:"half_height"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Capture: Capture{
			Mode:            capture.ModeEither.String(),
			MinDistance:     0.001,
			SurfaceOffset:   0.001,
			SurfaceRelative: true,
			ContactRange:    0.015,
			TipColor:        "#000000",
		},
		Selection: Selection{
			Radius:          0.05,
			MaxRayLength:    10,
			SwitchLockTime:  0.3,
			SwitchThreshold: 0.01,
			DeselectDelay:   0.2,
			HoverTint:       "#ffd400",
			HoverBlend:      0.5,
			SelectColor:     "#00b4ff",
		},
		Transform: Transform{
			RoundResolution:   30,
			SimplifyTolerance: 0.005,
			RecolorColor:      "#000000",
		},
		Undo: Undo{MaxSteps: 20},
		Link: Link{Addr: ":8890", MDNS: true, Service: "_vrboard._tcp"},
		Engine: Engine{
			TickRate:        90,
			DefaultWorkflow: command.KindRayMenu.String(),
		},
		Surfaces: []Surface{{
			Tag:        "whiteboard",
			Origin:     [3]float32{0, 1.5, 1},
			Normal:     [3]float32{0, 0, -1},
			Up:         [3]float32{0, 1, 0},
			HalfWidth:  1,
			HalfHeight: 0.75,
		}},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[CONFIG] %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err = Decode(f)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r over the defaults and validates the result.
// Without any [[surfaces]] table the default surfaces are kept.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	surfaces := cfg.Surfaces
	cfg.Surfaces = nil
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Surfaces) == 0 {
		cfg.Surfaces = surfaces
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks ranges and that every name and color parses.
func (c Config) Validate() error {
	var errs []error
	if _, ok := capture.ParseMode(c.Capture.Mode); !ok {
		errs = append(errs, fmt.Errorf("capture.mode: unknown mode %q", c.Capture.Mode))
	}
	if c.Capture.MinDistance < 0 {
		errs = append(errs, errors.New("capture.min_distance must not be negative"))
	}
	if c.Capture.ContactRange < 0 {
		errs = append(errs, errors.New("capture.contact_range must not be negative"))
	}
	if c.Selection.Radius <= 0 {
		errs = append(errs, errors.New("selection.radius must be positive"))
	}
	if c.Selection.MaxRayLength <= 0 {
		errs = append(errs, errors.New("selection.max_ray_length must be positive"))
	}
	if c.Selection.SwitchLockTime < 0 || c.Selection.DeselectDelay < 0 {
		errs = append(errs, errors.New("selection times must not be negative"))
	}
	if c.Selection.HoverBlend < 0 || c.Selection.HoverBlend > 1 {
		errs = append(errs, errors.New("selection.hover_blend must be within [0, 1]"))
	}
	if c.Transform.RoundResolution < 3 {
		errs = append(errs, errors.New("transform.round_resolution must be at least 3"))
	}
	if c.Transform.SimplifyTolerance < 0 {
		errs = append(errs, errors.New("transform.simplify_tolerance must not be negative"))
	}
	if c.Undo.MaxSteps < 1 {
		errs = append(errs, errors.New("undo.max_steps must be at least 1"))
	}
	if c.Engine.TickRate <= 0 {
		errs = append(errs, errors.New("engine.tick_rate must be positive"))
	}
	if _, ok := command.ParseKind(c.Engine.DefaultWorkflow); !ok {
		errs = append(errs, fmt.Errorf("engine.default_workflow: unknown workflow %q", c.Engine.DefaultWorkflow))
	}
	for name, hex := range map[string]string{
		"capture.tip_color":       c.Capture.TipColor,
		"selection.hover_tint":    c.Selection.HoverTint,
		"selection.select_color":  c.Selection.SelectColor,
		"transform.recolor_color": c.Transform.RecolorColor,
	} {
		if _, err := ParseColor(hex); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	for i, s := range c.Surfaces {
		if s.HalfWidth <= 0 || s.HalfHeight <= 0 {
			errs = append(errs, fmt.Errorf("surfaces[%d]: half extents must be positive", i))
		}
		if vec(s.Normal).IsZero() {
			errs = append(errs, fmt.Errorf("surfaces[%d]: normal must not be zero", i))
		}
	}
	return errors.Join(errs...)
}

// ParseColor reads a "#rrggbb" hex color as an opaque NRGBA.
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// TickInterval is the frame period for engine.Run.
func (c Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.Engine.TickRate)
}

// EngineConfig converts the file settings into the engine's. Call Validate first.
func (c Config) EngineConfig() engine.Config {
	mode, _ := capture.ParseMode(c.Capture.Mode)
	wf, _ := command.ParseKind(c.Engine.DefaultWorkflow)
	hover, _ := ParseColor(c.Selection.HoverTint)
	sel, _ := ParseColor(c.Selection.SelectColor)
	recolor, _ := ParseColor(c.Transform.RecolorColor)

	return engine.Config{
		Capture: capture.Config{
			Mode:            mode,
			MinDistance:     c.Capture.MinDistance,
			SurfaceOffset:   c.Capture.SurfaceOffset,
			SurfaceRelative: c.Capture.SurfaceRelative,
		},
		Workflow: command.Config{
			Selection: selection.Config{
				SelectionRadius: c.Selection.Radius,
				MaxRayLength:    c.Selection.MaxRayLength,
				SwitchLockTime:  seconds(c.Selection.SwitchLockTime),
				SwitchThreshold: c.Selection.SwitchThreshold,
				DeselectDelay:   seconds(c.Selection.DeselectDelay),
				HoverTint:       hover,
				HoverBlend:      c.Selection.HoverBlend,
				SelectColor:     sel,
			},
			MaxUndoSteps:      c.Undo.MaxSteps,
			RoundResolution:   c.Transform.RoundResolution,
			SimplifyTolerance: c.Transform.SimplifyTolerance,
			RecolorColor:      recolor,
		},
		DefaultWorkflow: wf,
	}
}

// TipColor is the initial pencil color.
func (c Config) TipColor() color.NRGBA {
	tip, _ := ParseColor(c.Capture.TipColor)
	return tip
}

// SurfaceSet builds the configured drawing surfaces.
func (c Config) SurfaceSet() *state.SurfaceSet {
	set := state.NewSurfaceSet(c.Capture.ContactRange)
	for _, s := range c.Surfaces {
		set.Add(state.NewSurface(s.Tag, vec(s.Origin), vec(s.Normal), vec(s.Up), s.HalfWidth, s.HalfHeight))
	}
	return set
}

func seconds(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }

func vec(a [3]float32) geom.Vec3 { return geom.V3(a[0], a[1], a[2]) }
