// Package viz hosts a scene in the terminal.
//
// [Terminal] is a scene backend that rasterises proxies onto a braille
// [Canvas]; [Model] is the Bubble Tea program that drives the scene
// lifecycle from its tick loop and feeds keys and mouse events to the
// simulator. [Menu] picks a demo.
//
// # Key Bindings
//
//	W A S D / arrows - drive or move, per scene
//	Space            - jump
//	Shift (capitals) - boost
//	P                - pause stepping
//	, .              - orbit the camera
//	+ -              - zoom
//	T                - cycle themes
//	?                - scene help
//	Q                - quit
//
// Terminals report key presses only. A key is held while it keeps
// repeating and released shortly after the repeats stop.
package viz
