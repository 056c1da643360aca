package birch

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Key is a keyboard key. It aliases ebiten.Key so the ebiten key constants
// can be used directly.
type Key = ebiten.Key

// MouseButton is a mouse button. It aliases ebiten.MouseButton.
type MouseButton = ebiten.MouseButton

// --- Handler registry ---

type keyHandler struct {
	id      uint32
	key     Key
	onPress bool
	fn      func(dt float32)
}

type handlerRegistry struct {
	keys   []keyHandler
	nextID uint32
}

// CallbackHandle allows removing a registered key binding.
type CallbackHandle struct {
	id  uint32
	reg *handlerRegistry
}

// Remove unregisters this binding so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	s := h.reg.keys
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = keyHandler{}
			h.reg.keys = s[:len(s)-1]
			return
		}
	}
}

// --- Input state ---

// InputState holds the keyboard and mouse state seen by one tick. The window
// layer feeds raw edges through PressKey, ReleaseKey, PressButton,
// ReleaseButton, MoveMouse and ScrollWheel. Queries are stable for the
// duration of a tick.
type InputState struct {
	keys        [ebiten.KeyMax + 1]bool
	prevKeys    [ebiten.KeyMax + 1]bool
	buttons     [ebiten.MouseButtonMax + 1]bool
	prevButtons [ebiten.MouseButtonMax + 1]bool

	mouseX, mouseY         float32
	lastMouseX, lastMouseY float32
	deltaX, deltaY         float32
	wheelX, wheelY         float32
	pendingX, pendingY     float32
	mouseSeen              bool

	handlers    handlerRegistry
	dispatchBuf []keyHandler
	injectQueue []syntheticEvent
}

// NewInputState returns an empty input state.
func NewInputState() *InputState {
	return &InputState{}
}

func validKey(k Key) bool            { return k >= 0 && k <= ebiten.KeyMax }
func validButton(b MouseButton) bool { return b >= 0 && b <= ebiten.MouseButtonMax }

// PressKey records that k went down.
func (in *InputState) PressKey(k Key) {
	if validKey(k) {
		in.keys[k] = true
	}
}

// ReleaseKey records that k went up.
func (in *InputState) ReleaseKey(k Key) {
	if validKey(k) {
		in.keys[k] = false
	}
}

// PressButton records that b went down.
func (in *InputState) PressButton(b MouseButton) {
	if validButton(b) {
		in.buttons[b] = true
	}
}

// ReleaseButton records that b went up.
func (in *InputState) ReleaseButton(b MouseButton) {
	if validButton(b) {
		in.buttons[b] = false
	}
}

// MoveMouse records the cursor position in framebuffer pixels.
func (in *InputState) MoveMouse(x, y float32) {
	in.mouseX, in.mouseY = x, y
	if !in.mouseSeen {
		in.lastMouseX, in.lastMouseY = x, y
		in.mouseSeen = true
	}
}

// ScrollWheel accumulates wheel movement until the next tick.
func (in *InputState) ScrollWheel(dx, dy float32) {
	in.pendingX += dx
	in.pendingY += dy
}

// beginFrame applies at most one injected event and latches the mouse
// delta and wheel for this tick.
func (in *InputState) beginFrame() {
	in.processInjected()
	in.deltaX = in.mouseX - in.lastMouseX
	in.deltaY = in.mouseY - in.lastMouseY
	in.lastMouseX, in.lastMouseY = in.mouseX, in.mouseY
	in.wheelX, in.wheelY = in.pendingX, in.pendingY
	in.pendingX, in.pendingY = 0, 0
}

// endFrame remembers this tick's state so the next tick can detect edges.
func (in *InputState) endFrame() {
	in.prevKeys = in.keys
	in.prevButtons = in.buttons
}

// --- Queries ---

// KeyDown reports whether k is held.
func (in *InputState) KeyDown(k Key) bool { return validKey(k) && in.keys[k] }

// KeyPressed reports whether k went down this tick.
func (in *InputState) KeyPressed(k Key) bool {
	return validKey(k) && in.keys[k] && !in.prevKeys[k]
}

// KeyReleased reports whether k went up this tick.
func (in *InputState) KeyReleased(k Key) bool {
	return validKey(k) && !in.keys[k] && in.prevKeys[k]
}

// ButtonDown reports whether b is held.
func (in *InputState) ButtonDown(b MouseButton) bool { return validButton(b) && in.buttons[b] }

// ButtonPressed reports whether b went down this tick.
func (in *InputState) ButtonPressed(b MouseButton) bool {
	return validButton(b) && in.buttons[b] && !in.prevButtons[b]
}

// ButtonReleased reports whether b went up this tick.
func (in *InputState) ButtonReleased(b MouseButton) bool {
	return validButton(b) && !in.buttons[b] && in.prevButtons[b]
}

// MousePosition returns the cursor position in framebuffer pixels.
func (in *InputState) MousePosition() Vec2 { return Vec2{X: in.mouseX, Y: in.mouseY} }

// MouseDelta returns the cursor movement since the previous tick.
func (in *InputState) MouseDelta() Vec2 { return Vec2{X: in.deltaX, Y: in.deltaY} }

// Wheel returns the wheel movement accumulated since the previous tick.
func (in *InputState) Wheel() Vec2 { return Vec2{X: in.wheelX, Y: in.wheelY} }

// --- Bindings ---

// BindKey registers fn to run every tick while k is held.
func (in *InputState) BindKey(k Key, fn func(dt float32)) CallbackHandle {
	return in.bind(k, false, fn)
}

// BindKeyPress registers fn to run on the tick k goes down.
func (in *InputState) BindKeyPress(k Key, fn func(dt float32)) CallbackHandle {
	return in.bind(k, true, fn)
}

func (in *InputState) bind(k Key, onPress bool, fn func(dt float32)) CallbackHandle {
	in.handlers.nextID++
	id := in.handlers.nextID
	in.handlers.keys = append(in.handlers.keys, keyHandler{id: id, key: k, onPress: onPress, fn: fn})
	return CallbackHandle{id: id, reg: &in.handlers}
}

// dispatch runs the bindings whose condition holds. Bindings added or
// removed by a callback take effect on the next tick.
func (in *InputState) dispatch(dt float32) {
	in.dispatchBuf = append(in.dispatchBuf[:0], in.handlers.keys...)
	for _, h := range in.dispatchBuf {
		var fire bool
		if h.onPress {
			fire = in.KeyPressed(h.key)
		} else {
			fire = in.KeyDown(h.key)
		}
		if fire {
			h.fn(dt)
		}
	}
	clear(in.dispatchBuf)
}
