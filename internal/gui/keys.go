package gui

import rl "github.com/gen2brain/raylib-go/raylib"

type key struct {
	code int32
	name string
}

// keyTable lists the keys forwarded to the scene, named the way bindings
// expect them.
var keyTable = []key{
	{rl.KeyW, "w"}, {rl.KeyA, "a"}, {rl.KeyS, "s"}, {rl.KeyD, "d"},
	{rl.KeyUp, "up"}, {rl.KeyDown, "down"}, {rl.KeyLeft, "left"}, {rl.KeyRight, "right"},
	{rl.KeySpace, "space"}, {rl.KeyLeftShift, "shift"}, {rl.KeyRightShift, "shift"},
	{rl.KeyR, "r"}, {rl.KeyC, "c"}, {rl.KeyB, "b"}, {rl.KeyP, "p"},
}
