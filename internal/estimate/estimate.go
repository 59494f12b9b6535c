// Package estimate produces the placeholder tile estimate shown at the end
// of a conversation cycle.
package estimate

import (
	"math/rand/v2"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// MinTiles and MaxTiles bound the drawn tile count, inclusive.
	MinTiles = 50
	MaxTiles = 99

	TilesPerBox      = 10
	DefaultUnitPrice = 150
	CurrencySymbol   = "₹"
)

// Locale fixes the digit grouping used for cost strings.
var Locale = language.Make("en-IN")

// Source is the randomness the calculator draws from. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Result is one estimate payload.
type Result struct {
	TileCount int    `json:"tileCount"`
	BoxCount  int    `json:"boxCount"`
	Area      string `json:"area"`
	Cost      int    `json:"costAmount"`
	CostText  string `json:"cost"`
}

type Calculator struct {
	src       Source
	unitPrice int
	printer   *message.Printer
}

// NewCalculator returns a calculator; a nil src uses the process-wide
// generator and a non-positive unitPrice falls back to DefaultUnitPrice.
func NewCalculator(src Source, unitPrice int) *Calculator {
	if src == nil {
		src = globalSource{}
	}
	if unitPrice <= 0 {
		unitPrice = DefaultUnitPrice
	}
	return &Calculator{
		src:       src,
		unitPrice: unitPrice,
		printer:   message.NewPrinter(Locale),
	}
}

// Draw picks a tile count uniformly from [MinTiles, MaxTiles] and derives
// boxes and cost from it. area is carried through verbatim.
func (c *Calculator) Draw(area string) Result {
	tiles := MinTiles + c.src.IntN(MaxTiles-MinTiles+1)
	cost := tiles * c.unitPrice
	return Result{
		TileCount: tiles,
		BoxCount:  Boxes(tiles),
		Area:      area,
		Cost:      cost,
		CostText:  c.FormatCost(cost),
	}
}

// FormatCost renders an amount with the currency symbol and locale grouping.
func (c *Calculator) FormatCost(amount int) string {
	return CurrencySymbol + c.printer.Sprintf("%d", amount)
}

// Boxes is ceil(tiles / TilesPerBox).
func Boxes(tiles int) int {
	if tiles <= 0 {
		return 0
	}
	return (tiles + TilesPerBox - 1) / TilesPerBox
}
