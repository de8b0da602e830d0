package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/midgard-vr/internal/controls"
)

// keyCodes maps physical keys to the control key codes.
var keyCodes = map[sdl.Scancode]controls.Key{
	sdl.SCANCODE_A:          controls.KeyA,
	sdl.SCANCODE_D:          controls.KeyD,
	sdl.SCANCODE_W:          controls.KeyW,
	sdl.SCANCODE_S:          controls.KeyS,
	sdl.SCANCODE_Q:          controls.KeyQ,
	sdl.SCANCODE_E:          controls.KeyE,
	sdl.SCANCODE_UP:         controls.KeyUp,
	sdl.SCANCODE_DOWN:       controls.KeyDown,
	sdl.SCANCODE_LEFT:       controls.KeyLeft,
	sdl.SCANCODE_RIGHT:      controls.KeyRight,
	sdl.SCANCODE_SLASH:      controls.KeySlash,
	sdl.SCANCODE_APOSTROPHE: controls.KeyQuote,
}

// KeyCode translates a scancode. It returns false for keys with no binding.
func KeyCode(sc sdl.Scancode) (controls.Key, bool) {
	k, ok := keyCodes[sc]
	return k, ok
}

// Edge converts a keyboard event into a control edge.
func Edge(e Event) (key controls.Key, pressed bool, ok bool) {
	if e.Type != EventKeyDown && e.Type != EventKeyUp {
		return 0, false, false
	}
	key, ok = KeyCode(e.Key)
	return key, e.Type == EventKeyDown, ok
}
