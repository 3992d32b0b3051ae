package render

import "image/color"

var (
	DefaultColor   = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	GroundColor    = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
	StringColor    = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	HighlightColor = color.RGBA{R: 0xff, G: 0xcc, B: 0x33, A: 0xff}
)

// Palette is cycled through for spawned objects.
var Palette = []color.RGBA{
	{R: 0xe0, G: 0x6c, B: 0x75, A: 0xff},
	{R: 0x98, G: 0xc3, B: 0x79, A: 0xff},
	{R: 0x61, G: 0xaf, B: 0xef, A: 0xff},
	{R: 0xe5, G: 0xc0, B: 0x7b, A: 0xff},
	{R: 0xc6, G: 0x78, B: 0xdd, A: 0xff},
	{R: 0x56, G: 0xb6, B: 0xc2, A: 0xff},
}

func PaletteColor(i int) color.RGBA {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}
