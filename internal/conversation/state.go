package conversation

import (
	"strings"

	"github.com/lojasmm/tilebot/internal/estimate"
)

// Step is the controller's position in its five-stage script.
type Step int

const (
	StepTileType Step = iota
	StepArea
	StepTileSize
	// StepEstimate is passed through while the estimate is emitted.
	StepEstimate
	StepFollowUp
)

// Progress is the indicator value for a step.
func (s Step) Progress() int { return int(s) * 25 }

type TileType string

const (
	TileUnset TileType = ""
	TileFloor TileType = "floor"
	TileWall  TileType = "wall"
	TileBoth  TileType = "both"
)

// ClassifyTileType matches "floor" before "wall"; anything else is both.
func ClassifyTileType(input string) TileType {
	lower := strings.ToLower(input)
	switch {
	case strings.Contains(lower, "floor"):
		return TileFloor
	case strings.Contains(lower, "wall"):
		return TileWall
	default:
		return TileBoth
	}
}

// State is everything a single conversation remembers. Area and TileSize
// are only meaningful once their steps have been passed.
type State struct {
	Step        Step
	TileType    TileType
	RawTileType string
	Area        string
	TileSize    string
	LastInput   string

	Offered      []string
	ModalOpen    bool
	LastEstimate *estimate.Result
}

func (s State) offers(label string) bool {
	for _, o := range s.Offered {
		if o == label {
			return true
		}
	}
	return false
}

func (s State) clone() State {
	s.Offered = append([]string(nil), s.Offered...)
	if s.LastEstimate != nil {
		est := *s.LastEstimate
		s.LastEstimate = &est
	}
	return s
}
