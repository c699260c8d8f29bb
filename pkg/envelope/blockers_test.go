package envelope

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/vb3d-sim/pkg/court"
	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

func TestBlockerPositions(t *testing.T) {
	b := DefaultBlock(0)
	ys := b.Positions()
	require.Len(t, ys, 2)
	assert.InDelta(t, -0.325, ys[0], 1e-12)
	assert.InDelta(t, 0.325, ys[1], 1e-12)

	b.Count = 1
	assert.Equal(t, []float64{0}, b.Positions())

	b.Count = 0
	assert.Nil(t, b.Positions())
}

func TestBlockerPositionsStayInsideAntennas(t *testing.T) {
	b := DefaultBlock(4.4)
	b.Count = 3
	ys := b.Positions()
	require.Len(t, ys, 3)
	assert.InDelta(t, 4.5, ys[2], 1e-12)
	assert.InDelta(t, 3.85, ys[1], 1e-12)
	assert.InDelta(t, 3.2, ys[0], 1e-12)

	b.AnchorY = -4.4
	ys = b.Positions()
	assert.InDelta(t, -4.5, ys[0], 1e-12)
}

func TestBlockValidateRejectsBadGeometry(t *testing.T) {
	edge := DefaultBlock(court.YMax)
	require.NoError(t, edge.Validate())

	cases := map[string]func(b *Block){
		"too many":       func(b *Block) { b.Count = MaxBlockers + 1 },
		"anchor outside": func(b *Block) { b.AnchorY = court.YMax + 1 },
		"anchor nan":     func(b *Block) { b.AnchorY = math.NaN() },
		"negative gap":   func(b *Block) { b.Gap = -0.2 },
		"negative width": func(b *Block) { b.HandsWidth = -0.6 },
		"zero width":     func(b *Block) { b.HandsWidth = 0 },
		"hand gap inf":   func(b *Block) { b.HandGap = math.Inf(1) },
		"reach too tall": func(b *Block) { b.Reach = MaxReach + 0.5 },
		"press too deep": func(b *Block) { b.PressDepth = MaxPressDepth + 0.1 },
		"negative press": func(b *Block) { b.PressDepth = -0.1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := DefaultBlock(0)
			mutate(&b)
			assert.Error(t, b.Validate())
		})
	}
}

func TestValidBlockPositionsAreOrdered(t *testing.T) {
	b := DefaultBlock(-2)
	b.Count = MaxBlockers
	require.NoError(t, b.Validate())
	ys := b.Positions()
	for i := 1; i < len(ys); i++ {
		assert.Less(t, ys[i-1], ys[i])
	}
}

func TestAnchorFromHitter(t *testing.T) {
	assert.InDelta(t, 3.45, AnchorFromHitter(3.8, 0.35), 1e-12)
	assert.InDelta(t, -3.45, AnchorFromHitter(-3.8, 0.35), 1e-12)
	assert.InDelta(t, -0.35, AnchorFromHitter(0, 0.35), 1e-12)
}

func TestHandsCoverNetWindow(t *testing.T) {
	b := DefaultBlock(0)
	b.Count = 1
	ys := b.Positions()

	h := b.Hands()
	assert.InDelta(t, 0.285, h.HandWidth, 1e-12)
	assert.InDelta(t, 0.1575, h.CenterOffset, 1e-12)

	assert.True(t, b.Covers(0.1575, 2.6, 2.43, ys))
	assert.True(t, b.Covers(-0.1575, 2.43, 2.43, ys))
	assert.False(t, b.Covers(0, 2.6, 2.43, ys), "gap between hands")
	assert.False(t, b.Covers(0.1575, 3.0, 2.43, ys), "over the hands")
	assert.False(t, b.Covers(0.1575, 2.3, 2.43, ys), "below the net top")
	assert.False(t, b.Covers(1.0, 2.6, 2.43, ys))
}

func TestBlockSplitsLegalSpikes(t *testing.T) {
	contact := vecmath.Vector3{X: -0.8, Y: 0, Z: 3.1}
	open, err := Generate(Params{Contact: contact, NetHeight: 2.43, NX: 60, NY: 60, K: 10})
	require.NoError(t, err)

	blk := DefaultBlock(0)
	blk.Count = 1
	blocked, err := Generate(Params{Contact: contact, NetHeight: 2.43, NX: 60, NY: 60, K: 10, Blockers: &blk})
	require.NoError(t, err)

	assert.NotEmpty(t, blocked.BlockedLandings)
	assert.Equal(t, len(open.Landings), len(blocked.Landings)+len(blocked.BlockedLandings))
	assert.Len(t, blocked.Cloud, len(blocked.Landings)*10)
	assert.Equal(t, []float64{0}, blocked.BlockerY)
}

func TestNoBlockersMatchesOpenNet(t *testing.T) {
	contact := vecmath.Vector3{X: -0.8, Y: 3.8, Z: 3.1}
	open, err := Generate(Params{Contact: contact, NetHeight: 2.43, NX: 30, NY: 30, K: 4})
	require.NoError(t, err)

	none := DefaultBlock(3.45)
	none.Count = 0
	same, err := Generate(Params{Contact: contact, NetHeight: 2.43, NX: 30, NY: 30, K: 4, Blockers: &none})
	require.NoError(t, err)
	assert.Equal(t, open.Landings, same.Landings)
	assert.Equal(t, open.Cloud, same.Cloud)
}

func TestPressCheckStopsSpikeOverHands(t *testing.T) {
	blk := Block{Count: 1, AnchorY: 0, HandsWidth: 0.6, HandGap: 0, Reach: 0.5, PressDepth: 0.4}
	ys := blk.Positions()
	contact := vecmath.Vector3{X: -0.8, Y: 0.2, Z: 3.1}
	landing := vecmath.Vector3{X: 8, Y: 1.52}

	c := Classify(contact, landing, 2.43)
	require.Equal(t, Legal, c.Verdict)
	// The spike drifts past the outer hand by the time it reaches the net
	// but is still in front of it where the hands press over.
	assert.False(t, blk.Covers(c.Point.Y, c.Point.Z, 2.43, ys))
	assert.True(t, blk.Stops(contact, landing, c.Point, 2.43, ys))

	blk.PressDepth = 0
	assert.False(t, blk.Stops(contact, landing, c.Point, 2.43, ys))
}
