package config

import "maps"

// DefaultConfig returns the configuration used when no config file exists
// or a file leaves fields unset.
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Radius:       ptr(1),
			Direction:    "both",
			ShowDangling: ptr(false),
			WrapWidth:    100,
			Height:       "800px",
			Width:        "100%",
			Physics:      ptr(true),
			Theme:        "default",
		},
		Palette: PaletteConfig{
			Entry:    "indigo",
			Dangling: "red",
		},
		Rank: RankConfig{
			PageRankDamping:     0.85,
			PageRankIterations:  100,
			Top:                 20,
			KeystoneThreshold:   0.30,
			BottleneckThreshold: 0.20,
		},
		Check: CheckConfig{
			Exclude: []string{"**/testdata/**"},
		},
		Export: ExportConfig{
			Backend: "sqlite",
		},
		Output: OutputConfig{
			Format:  "yaml",
			Density: "medium",
		},
	}
}

func ptr[T any](v T) *T { return &v }

// Merge fills the unset fields of loaded from defaults and returns the
// result as a new Config.
func Merge(loaded, defaults *Config) *Config {
	return &Config{
		Render:  mergeRenderConfig(loaded.Render, defaults.Render),
		Palette: mergePaletteConfig(loaded.Palette, defaults.Palette),
		Rank:    mergeRankConfig(loaded.Rank, defaults.Rank),
		Check:   CheckConfig{Exclude: orSlice(loaded.Check.Exclude, defaults.Check.Exclude)},
		Export:  ExportConfig{Backend: or(loaded.Export.Backend, defaults.Export.Backend)},
		Output: OutputConfig{
			Format:  or(loaded.Output.Format, defaults.Output.Format),
			Density: or(loaded.Output.Density, defaults.Output.Density),
		},
	}
}

func mergeRenderConfig(loaded, defaults RenderConfig) RenderConfig {
	return RenderConfig{
		Format:       or(loaded.Format, defaults.Format),
		Radius:       orPtr(loaded.Radius, defaults.Radius),
		Direction:    or(loaded.Direction, defaults.Direction),
		ShowDangling: orPtr(loaded.ShowDangling, defaults.ShowDangling),
		WrapWidth:    or(loaded.WrapWidth, defaults.WrapWidth),
		Height:       or(loaded.Height, defaults.Height),
		Width:        or(loaded.Width, defaults.Width),
		Physics:      orPtr(loaded.Physics, defaults.Physics),
		Theme:        or(loaded.Theme, defaults.Theme),
	}
}

// mergePaletteConfig layers loaded type colors over the default ones.
func mergePaletteConfig(loaded, defaults PaletteConfig) PaletteConfig {
	result := PaletteConfig{
		Colors:   orSlice(loaded.Colors, defaults.Colors),
		Entry:    or(loaded.Entry, defaults.Entry),
		Dangling: or(loaded.Dangling, defaults.Dangling),
	}
	if len(loaded.Types) > 0 || len(defaults.Types) > 0 {
		result.Types = make(map[string]string, len(loaded.Types)+len(defaults.Types))
		maps.Copy(result.Types, defaults.Types)
		maps.Copy(result.Types, loaded.Types)
	}
	return result
}

func mergeRankConfig(loaded, defaults RankConfig) RankConfig {
	return RankConfig{
		PageRankDamping:     or(loaded.PageRankDamping, defaults.PageRankDamping),
		PageRankIterations:  or(loaded.PageRankIterations, defaults.PageRankIterations),
		Top:                 or(loaded.Top, defaults.Top),
		KeystoneThreshold:   or(loaded.KeystoneThreshold, defaults.KeystoneThreshold),
		BottleneckThreshold: or(loaded.BottleneckThreshold, defaults.BottleneckThreshold),
	}
}

// or returns loaded unless it is the zero value.
func or[T comparable](loaded, def T) T {
	var zero T
	if loaded != zero {
		return loaded
	}
	return def
}

func orPtr[T any](loaded, def *T) *T {
	if loaded != nil {
		return loaded
	}
	return def
}

func orSlice[T any](loaded, def []T) []T {
	if len(loaded) > 0 {
		return loaded
	}
	return def
}

// RadiusValue returns the configured radius, 1 when unset.
func (r RenderConfig) RadiusValue() int {
	if r.Radius == nil {
		return 1
	}
	return *r.Radius
}

// ShowDanglingValue returns the configured show_dangling flag.
func (r RenderConfig) ShowDanglingValue() bool {
	return r.ShowDangling != nil && *r.ShowDangling
}

// PhysicsValue returns the configured physics flag, true when unset.
func (r RenderConfig) PhysicsValue() bool {
	return r.Physics == nil || *r.Physics
}
