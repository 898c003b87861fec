package present

import "hash/fnv"

// Palette decides node colors. Colors are CSS color names or hex values.
type Palette struct {
	// Colors is the fixed palette that type names hash into.
	Colors []string `yaml:"colors" json:"colors"`
	// Types pins a color for specific type names.
	Types map[string]string `yaml:"types" json:"types"`
	// Entry is the color of the target entity in a neighborhood view.
	Entry string `yaml:"entry" json:"entry"`
	// Dangling is the color of placeholder nodes for missing entities.
	Dangling string `yaml:"dangling" json:"dangling"`
}

// KnownTypeColors are the default pinned colors for common geometry types.
var KnownTypeColors = map[string]string{
	// STEP
	"CARTESIAN_POINT":             "lightgrey",
	"PCURVE":                      "orange",
	"B_SPLINE_CURVE_WITH_KNOTS":   "palegreen",
	"B_SPLINE_SURFACE_WITH_KNOTS": "darkkhaki",

	// IFC
	"IFCCARTESIANPOINT":      "lightgrey",
	"IFCPOLYLINE":            "orange",
	"IFCSHAPEREPRESENTATION": "darkkhaki",
}

// DefaultColors avoids the entry and dangling colors so those stay distinct.
var DefaultColors = []string{
	"#97c2fc", // vis default blue
	"#ffb347",
	"#77dd77",
	"#f49ac2",
	"#aec6cf",
	"#fdfd96",
	"#cb99c9",
	"#b39eb5",
	"#ffd1dc",
	"#84b6f4",
	"#c23b22",
	"#03c03c",
	"#779ecb",
	"#dea5a4",
	"#966fd6",
	"#bdb76b",
}

const (
	DefaultEntryColor    = "indigo"
	DefaultDanglingColor = "red"
)

// DefaultPalette returns the built-in palette.
func DefaultPalette() Palette {
	types := make(map[string]string, len(KnownTypeColors))
	for k, v := range KnownTypeColors {
		types[k] = v
	}
	return Palette{
		Colors:   append([]string(nil), DefaultColors...),
		Types:    types,
		Entry:    DefaultEntryColor,
		Dangling: DefaultDanglingColor,
	}
}

// ColorFor returns the color for a type name. It is a pure function of its
// inputs: pinned types win, everything else hashes (FNV-1a) into p.Colors.
func ColorFor(typeName string, p Palette) string {
	if c, ok := p.Types[typeName]; ok {
		return c
	}
	if len(p.Colors) == 0 {
		return DefaultColors[hashIndex(typeName, len(DefaultColors))]
	}
	return p.Colors[hashIndex(typeName, len(p.Colors))]
}

func hashIndex(s string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % uint32(n))
}
