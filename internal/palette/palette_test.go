package palette

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "#0B6623", want: "#0b6623"},
		{in: "0b6623", want: "#0b6623"},
		{in: " #FFFFFF ", want: "#ffffff"},
		{in: "#fff", wantErr: true},
		{in: "#GG0000", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseHex(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidColor))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Hex())
		})
	}
}

func TestAssign_LightnessFloor(t *testing.T) {
	bases := []string{"#0B6623", "#000000", "#050505", "#1a0000", "#C41E3A", "#FFFFFF", "#0000FF"}
	rng := rand.New(rand.NewPCG(1, 2))

	for _, hex := range bases {
		base, err := ParseHex(hex)
		require.NoError(t, err)

		for trial := 0; trial < 100; trial++ {
			a := Assign(base, 300, rng)
			for i, c := range a.Colors {
				_, _, l := c.Hsl()
				if l < MinLightness-1e-9 {
					t.Fatalf("%s trial %d: particle %d lightness %f below floor", hex, trial, i, l)
				}
			}
		}
	}
}

func TestAssign_GreenBaseAccents(t *testing.T) {
	base, err := ParseHex(DefaultHex)
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(42, 42))

	var accents, goldOrRed, gold int
	for trial := 0; trial < 1000; trial++ {
		a := Assign(base, 100, rng)
		for i, tier := range a.Tiers {
			if tier != TierAccent {
				continue
			}
			accents++
			switch a.Colors[i].Hex() {
			case Gold.Hex():
				gold++
				goldOrRed++
			case Cardinal.Hex():
				goldOrRed++
			case Forest.Hex():
				t.Fatalf("forest green accent on a green base")
			}
		}
	}

	require.NotZero(t, accents)
	assert.GreaterOrEqual(t, float64(goldOrRed)/float64(accents), 0.9)
	assert.InDelta(t, 0.6, float64(gold)/float64(accents), 0.03)
}

func TestAssign_AccentPalettes(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		allow []colorful.Color
	}{
		{name: "reddish", base: "#C41E3A", allow: []colorful.Color{Gold, Forest}},
		{name: "blue", base: "#1E40C4", allow: []colorful.Color{White, Gold}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, err := ParseHex(tt.base)
			require.NoError(t, err)

			a := Assign(base, 5000, rand.New(rand.NewPCG(9, 9)))
			seen := map[string]int{}
			for i, tier := range a.Tiers {
				if tier == TierAccent {
					seen[a.Colors[i].Hex()]++
				}
			}

			require.Len(t, seen, len(tt.allow))
			for _, c := range tt.allow {
				assert.Contains(t, seen, c.Hex())
			}
		})
	}
}

func TestAssign_TierShares(t *testing.T) {
	base, _ := ParseHex("#3366CC")
	a := Assign(base, 20000, rand.New(rand.NewPCG(3, 3)))

	counts := map[Tier]int{}
	for _, tier := range a.Tiers {
		counts[tier]++
	}

	n := float64(a.Len())
	assert.InDelta(t, 0.60, float64(counts[TierBase])/n, 0.02)
	assert.InDelta(t, 0.25, float64(counts[TierRich])/n, 0.02)
	assert.InDelta(t, 0.15, float64(counts[TierAccent])/n, 0.02)
}

func TestAssign_BaseTierStaysNearBase(t *testing.T) {
	base, _ := ParseHex("#3366CC")
	bh, bs, bl := base.Hsl()
	a := Assign(base, 2000, rand.New(rand.NewPCG(5, 5)))

	for i, tier := range a.Tiers {
		h, s, l := a.Colors[i].Hsl()
		switch tier {
		case TierBase:
			assert.InDelta(t, bh, h, 0.5, "hue drifted at %d", i)
			assert.InDelta(t, bs, s, 0.075+1e-6)
			assert.InDelta(t, bl, l, 0.2+1e-6)
		case TierRich:
			assert.InDelta(t, bh, h, 0.05*360+0.5)
			assert.InDelta(t, bs+0.2, s, 1e-6, "saturation should be boosted")
			assert.InDelta(t, bl, l, 1e-6)
		}
	}
}

func TestAssign_NilRand(t *testing.T) {
	a := Assign(White, 10, nil)
	assert.Equal(t, 10, a.Len())
	assert.Equal(t, White, a.Base)
	for _, c := range a.Colors {
		assert.True(t, c.IsValid())
	}
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "base", TierBase.String())
	assert.Equal(t, "rich", TierRich.String())
	assert.Equal(t, "accent", TierAccent.String())
	assert.Equal(t, "tier(7)", Tier(7).String())
}

func TestPresetsParse(t *testing.T) {
	require.NotEmpty(t, Presets)
	assert.Equal(t, DefaultHex, Presets[0].Hex)
	for _, p := range Presets {
		_, err := ParseHex(p.Hex)
		assert.NoError(t, err, p.Name)
	}
}
