package conversation

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojasmm/tilebot/internal/estimate"
)

type fixedSource int

func (f fixedSource) IntN(int) int { return int(f) }

func newTestController(offset int) *Controller {
	return NewController(estimate.NewCalculator(fixedSource(offset), estimate.DefaultUnitPrice))
}

func TestClassifyTileType(t *testing.T) {
	tests := []struct {
		input string
		want  TileType
	}{
		{"Floor Tiles", TileFloor},
		{"Wall Tiles", TileWall},
		{"Both", TileBoth},
		{"FLOOR", TileFloor},
		{"kitchen wall", TileWall},
		{"floor and wall", TileFloor},
		{"bathroom", TileBoth},
		{"", TileBoth},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTileType(tt.input))
		})
	}
}

func TestStartRepliesClassifyToKnownTypes(t *testing.T) {
	for _, label := range StartReplies() {
		got := ClassifyTileType(label)
		assert.Contains(t, []TileType{TileFloor, TileWall, TileBoth}, got)
	}
}

func TestNewControllerInitialState(t *testing.T) {
	c := newTestController(0)
	st := c.State()

	assert.Equal(t, StepTileType, st.Step)
	assert.Equal(t, TileUnset, st.TileType)
	assert.Equal(t, []string{"Floor Tiles", "Wall Tiles", "Both"}, st.Offered)

	g := c.Greeting()
	assert.Equal(t, 0, g.Progress)
	assert.Equal(t, StartReplies(), g.QuickReplies)
	assert.Len(t, g.Messages, 1)
}

func TestAdvanceFloorTiles(t *testing.T) {
	c := newTestController(0)

	r := c.Advance("Floor Tiles")

	assert.Equal(t, TileFloor, c.State().TileType)
	assert.Equal(t, "Floor Tiles", c.State().RawTileType)
	assert.Equal(t, StepArea, c.State().Step)
	assert.Equal(t, 25, r.Progress)
	assert.True(t, r.Advanced)
	assert.Equal(t, []string{"100 sq.ft", "25 sq.m", "15 sq.ft", "Other size"}, r.QuickReplies)
	assert.Equal(t, []string{msgAskArea}, r.Messages)
	assert.Nil(t, r.Estimate)
}

func TestAdvanceStoresAreaVerbatim(t *testing.T) {
	c := newTestController(0)
	c.Advance("Both")

	r := c.Advance("  roughly forty-two square things ")

	assert.Equal(t, "  roughly forty-two square things ", c.State().Area)
	assert.Equal(t, 50, r.Progress)
	assert.Equal(t, []string{"12x12 in", "24x24 in", "6x36 in", "3x6 in", "Custom size"}, r.QuickReplies)
}

func TestFullCycleProducesEstimate(t *testing.T) {
	c := newTestController(23)

	c.Advance("Wall Tiles")
	c.Advance("25 sq.m")
	r := c.Advance("24x24 in")

	require.NotNil(t, r.Estimate)
	assert.Equal(t, 73, r.Estimate.TileCount)
	assert.Equal(t, 8, r.Estimate.BoxCount)
	assert.Equal(t, "25 sq.m", r.Estimate.Area)
	assert.Equal(t, "₹10,950", r.Estimate.CostText)

	require.Len(t, r.Messages, 3)
	assert.Equal(t, msgResultIntro, r.Messages[0])
	assert.Equal(t,
		"You will need approximately 73 tiles (8 boxes). The estimated cost is ₹10,950 including a 10% buffer for cuts and waste.",
		r.Messages[1])
	assert.Equal(t, msgOfferMatches, r.Messages[2])
	assert.Equal(t, 100, r.Progress)
	assert.Equal(t, []string{"Yes, show me", "Not now"}, r.QuickReplies)

	st := c.State()
	assert.Equal(t, StepFollowUp, st.Step)
	assert.Equal(t, "24x24 in", st.TileSize)
	require.NotNil(t, st.LastEstimate)
	assert.Equal(t, 73, st.LastEstimate.TileCount)
}

var summaryPattern = regexp.MustCompile(`approximately (\d+) tiles \((\d+) boxes\)\. The estimated cost is (₹[\d,]+) `)

func TestEstimateInvariantsWithRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	calc := estimate.NewCalculator(rng, estimate.DefaultUnitPrice)

	for i := range 200 {
		c := NewController(calc)
		c.Advance("tile " + strconv.Itoa(i))
		c.Advance(strconv.Itoa(rng.IntN(500)) + " sq.ft")
		r := c.Advance("size " + strconv.Itoa(i))

		m := summaryPattern.FindStringSubmatch(r.Messages[1])
		require.Len(t, m, 4, r.Messages[1])
		tiles, _ := strconv.Atoi(m[1])
		boxes, _ := strconv.Atoi(m[2])

		require.GreaterOrEqual(t, tiles, 50)
		require.LessOrEqual(t, tiles, 99)
		require.Equal(t, (tiles+9)/10, boxes)
		require.Equal(t, tiles*estimate.DefaultUnitPrice, r.Estimate.Cost)
		require.True(t, strings.HasPrefix(m[3], "₹"))
	}
}

func TestTerminalStepResets(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"yes button", "Yes, show me", msgShowMatches},
		{"lowercase yes", "oh yes please", msgShowMatches},
		{"not now", "Not now", msgDecline},
		{"anything else", "¯\\_(ツ)_/¯", msgDecline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(0)
			c.Advance("Floor Tiles")
			c.Advance("100 sq.ft")
			c.Advance("12x12 in")

			r := c.Advance(tt.input)

			assert.Equal(t, []string{tt.want}, r.Messages)
			assert.Equal(t, StepTileType, c.State().Step)
			assert.Equal(t, 0, r.Progress)
			assert.Equal(t, StartReplies(), r.QuickReplies)
		})
	}
}

func TestStepThreeAlsoResets(t *testing.T) {
	c := newTestController(0)
	c.state.Step = StepEstimate

	r := c.Advance("YES")

	assert.Equal(t, []string{msgShowMatches}, r.Messages)
	assert.Equal(t, StepTileType, c.State().Step)
}

func TestProgressValues(t *testing.T) {
	c := newTestController(0)
	var got []int
	for _, in := range []string{"Both", "15 sq.ft", "3x6 in", "Not now", "Floor"} {
		got = append(got, c.Advance(in).Progress)
	}
	assert.Equal(t, []int{25, 50, 100, 0, 25}, got)
}

func TestStateIsCopied(t *testing.T) {
	c := newTestController(0)
	st := c.State()
	st.Offered[0] = "mutated"
	assert.Equal(t, "Floor Tiles", c.State().Offered[0])
}

func TestIndependentControllers(t *testing.T) {
	a := newTestController(0)
	b := newTestController(0)

	a.Advance("Floor Tiles")

	assert.Equal(t, StepArea, a.State().Step)
	assert.Equal(t, StepTileType, b.State().Step)
}
