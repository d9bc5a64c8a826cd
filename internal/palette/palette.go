// Package palette distributes colors derived from one base color across the
// particle set.
package palette

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned for base colors that are not #RRGGBB hex.
var ErrInvalidColor = errors.New("invalid color")

// DefaultHex is the deep green the display starts with.
const DefaultHex = "#0B6623"

// Accent colors.
var (
	Gold     = mustHex("#D4AF37")
	Cardinal = mustHex("#C41E3A")
	Forest   = mustHex("#228B22")
	White    = mustHex("#FFFFFF")
)

// Preset is a named base color offered by the menus and key bindings.
type Preset struct {
	Name string
	Hex  string
}

// Presets lists the menu colors, starting with the default.
var Presets = []Preset{
	{Name: "Evergreen", Hex: DefaultHex},
	{Name: "Cardinal", Hex: "#C41E3A"},
	{Name: "Gold", Hex: "#D4AF37"},
	{Name: "Ice", Hex: "#7EC8E3"},
	{Name: "Violet", Hex: "#8A2BE2"},
	{Name: "Snow", Hex: "#FFFFFF"},
}

// Tier distribution and adjustment ranges.
const (
	baseShare = 0.60
	richShare = 0.85

	lightnessSpread  = 0.4
	saturationSpread = 0.15
	hueJitter        = 0.1
	richBoost        = 0.2

	// MinLightness is the floor every assigned color is held above.
	MinLightness = 0.2
	relightRange = 0.2
)

// Tier is the branch of the distribution a particle's color came from.
type Tier uint8

const (
	// TierBase is the base color with lightness and saturation varied.
	TierBase Tier = iota
	// TierRich shifts the hue slightly and boosts saturation.
	TierRich
	// TierAccent picks from a small fixed palette matched to the base hue.
	TierAccent
)

func (t Tier) String() string {
	switch t {
	case TierBase:
		return "base"
	case TierRich:
		return "rich"
	case TierAccent:
		return "accent"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// Assignment maps particle index to color. It is immutable once built.
type Assignment struct {
	Base   colorful.Color
	Colors []colorful.Color
	Tiers  []Tier
}

// Len returns the number of assigned colors.
func (a Assignment) Len() int {
	return len(a.Colors)
}

// ParseHex parses a #RRGGBB string. The leading # is optional.
func ParseHex(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 7 {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c, nil
}

// Assign builds a palette of n colors around base. rng may be nil to use
// the global source.
func Assign(base colorful.Color, n int, rng *rand.Rand) Assignment {
	a := Assignment{
		Base:   base,
		Colors: make([]colorful.Color, n),
		Tiers:  make([]Tier, n),
	}

	baseHue, _, _ := base.Hsl()
	hue := baseHue / 360
	accent := accentsFor(hue)

	for i := 0; i < n; i++ {
		var c colorful.Color
		roll := draw(rng)

		switch {
		case roll < baseShare:
			c = offsetHSL(base, 0, (draw(rng)-0.5)*saturationSpread, (draw(rng)-0.5)*lightnessSpread)
			a.Tiers[i] = TierBase
		case roll < richShare:
			c = offsetHSL(base, (draw(rng)-0.5)*hueJitter, richBoost, 0)
			a.Tiers[i] = TierRich
		default:
			c = accent(rng)
			a.Tiers[i] = TierAccent
		}

		a.Colors[i] = floorLightness(c, rng)
	}

	return a
}

// accentsFor returns the accent picker for a base hue in [0, 1).
func accentsFor(hue float64) func(*rand.Rand) colorful.Color {
	greenish := math.Abs(hue-0.33) < 0.15
	reddish := math.Abs(hue) < 0.1 || math.Abs(hue-1) < 0.1

	switch {
	case greenish:
		return pick(Gold, Cardinal, 0.6)
	case reddish:
		return pick(Gold, Forest, 0.6)
	default:
		return pick(White, Gold, 0.5)
	}
}

// pick returns a when a draw falls under p, otherwise b.
func pick(a, b colorful.Color, p float64) func(*rand.Rand) colorful.Color {
	return func(rng *rand.Rand) colorful.Color {
		if draw(rng) < p {
			return a
		}
		return b
	}
}

// offsetHSL shifts c in HSL space. Hue is in turns and wraps; saturation
// and lightness are clamped to [0, 1].
func offsetHSL(c colorful.Color, dh, ds, dl float64) colorful.Color {
	h, s, l := c.Hsl()
	h = wrap(h/360 + dh)
	return colorful.Hsl(h*360, clamp01(s+ds), clamp01(l+dl)).Clamped()
}

func floorLightness(c colorful.Color, rng *rand.Rand) colorful.Color {
	h, s, l := c.Hsl()
	if l >= MinLightness {
		return c
	}
	return colorful.Hsl(h, s, MinLightness+draw(rng)*relightRange).Clamped()
}

func wrap(x float64) float64 {
	x = math.Mod(x, 1)
	if x < 0 {
		x++
	}
	return x
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

func draw(rng *rand.Rand) float64 {
	if rng != nil {
		return rng.Float64()
	}
	return rand.Float64()
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
