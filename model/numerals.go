package model

import "fmt"

const (
	MatrixSide   = 5
	MatrixPixels = MatrixSide * MatrixSide
	NumeralCount = 10
)

// Numeral is the 5x5 mask of a digit in row-major order from the top-left
// corner, plus the colour used for its lit pixels.
type Numeral struct {
	Mask  [MatrixPixels]bool
	Color ColorVal
}

// Lit reports whether pixel i of the logical pattern is on.
func (n Numeral) Lit(i int) bool {
	return n.Mask[i]
}

// Dimmed returns the numeral colour scaled by brightness.
func (n Numeral) Dimmed(brightness float32) ColorVal {
	return n.Color.Scale(brightness)
}

func mask(rows ...string) [MatrixPixels]bool {
	var m [MatrixPixels]bool
	for r, row := range rows {
		for c, ch := range row {
			m[r*MatrixSide+c] = ch == '#'
		}
	}
	return m
}

// Cyan is shared by 2 and 5.
var numerals = [NumeralCount]Numeral{
	{Color: NewColor(0xFF0000), Mask: mask(
		"#####",
		"#...#",
		"#...#",
		"#...#",
		"#####")},
	{Color: NewColor(0x00FF00), Mask: mask(
		"..#..",
		"..##.",
		"..#..",
		"..#..",
		"..#..")},
	{Color: NewColor(0x00FFFF), Mask: mask(
		"#####",
		"#....",
		"#####",
		"....#",
		"#####")},
	{Color: NewColor(0xFFFF00), Mask: mask(
		"#####",
		"#....",
		"#####",
		"#....",
		"#####")},
	{Color: NewColor(0xFF00FF), Mask: mask(
		"#...#",
		"#...#",
		"#####",
		"#....",
		"....#")},
	{Color: NewColor(0x00FFFF), Mask: mask(
		"#####",
		"....#",
		"#####",
		"#....",
		"#####")},
	{Color: NewColor(0xFFA500), Mask: mask(
		"#####",
		"....#",
		"#####",
		"#...#",
		"#####")},
	{Color: NewColor(0x8A2BE2), Mask: mask(
		"#####",
		"#....",
		"...#.",
		"..#..",
		"..#..")},
	{Color: NewColor(0xFFFFFF), Mask: mask(
		"#####",
		"#...#",
		"#####",
		"#...#",
		"#####")},
	{Color: NewColor(0x808080), Mask: mask(
		"#####",
		"#...#",
		"#####",
		"#....",
		"#####")},
}

func IsDigit(d int) bool {
	return d >= 0 && d < NumeralCount
}

// Pattern returns the numeral for digit d. Callers range-check first; any
// other value is a programming error.
func Pattern(d int) Numeral {
	if !IsDigit(d) {
		panic(fmt.Sprintf("model: digit %d out of range", d))
	}
	return numerals[d]
}
