package birch

type syntheticKind uint8

const (
	synthKeyDown syntheticKind = iota
	synthKeyUp
	synthButtonDown
	synthButtonUp
	synthMove
	synthScroll
)

// syntheticEvent is a single injected input event. Mouse coordinates are in
// framebuffer pixels, the same space real cursor positions use.
type syntheticEvent struct {
	kind   syntheticKind
	key    Key
	button MouseButton
	x, y   float32
}

// InjectKeyDown queues a key press. The event is applied at the start of the
// next tick.
func (in *InputState) InjectKeyDown(k Key) {
	in.injectQueue = append(in.injectQueue, syntheticEvent{kind: synthKeyDown, key: k})
}

// InjectKeyUp queues a key release.
func (in *InputState) InjectKeyUp(k Key) {
	in.injectQueue = append(in.injectQueue, syntheticEvent{kind: synthKeyUp, key: k})
}

// InjectKey queues a press followed by a release. Consumes two ticks.
func (in *InputState) InjectKey(k Key) {
	in.InjectKeyDown(k)
	in.InjectKeyUp(k)
}

// InjectMove queues a cursor move to (x, y).
func (in *InputState) InjectMove(x, y float32) {
	in.injectQueue = append(in.injectQueue, syntheticEvent{kind: synthMove, x: x, y: y})
}

// InjectClick queues a move to (x, y), a press of b and a release. Consumes
// three ticks.
func (in *InputState) InjectClick(b MouseButton, x, y float32) {
	in.InjectMove(x, y)
	in.injectQueue = append(in.injectQueue,
		syntheticEvent{kind: synthButtonDown, button: b, x: x, y: y},
		syntheticEvent{kind: synthButtonUp, button: b, x: x, y: y})
}

// InjectScroll queues a wheel movement.
func (in *InputState) InjectScroll(dx, dy float32) {
	in.injectQueue = append(in.injectQueue, syntheticEvent{kind: synthScroll, x: dx, y: dy})
}

// InjectDrag queues a cursor sweep from one point to another, linearly
// interpolated over frames ticks with the button held.
func (in *InputState) InjectDrag(b MouseButton, fromX, fromY, toX, toY float32, frames int) {
	if frames < 2 {
		frames = 2
	}
	in.InjectMove(fromX, fromY)
	in.injectQueue = append(in.injectQueue, syntheticEvent{kind: synthButtonDown, button: b})
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float32(i) / float32(steps+1)
		in.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	in.InjectMove(toX, toY)
	in.injectQueue = append(in.injectQueue, syntheticEvent{kind: synthButtonUp, button: b})
}

// Injecting reports whether injected events are still pending. The window
// layer skips polling real input while this is true.
func (in *InputState) Injecting() bool { return len(in.injectQueue) > 0 }

// processInjected pops one event from the queue and applies it.
func (in *InputState) processInjected() bool {
	if len(in.injectQueue) == 0 {
		return false
	}
	evt := in.injectQueue[0]
	copy(in.injectQueue, in.injectQueue[1:])
	in.injectQueue = in.injectQueue[:len(in.injectQueue)-1]

	switch evt.kind {
	case synthKeyDown:
		in.PressKey(evt.key)
	case synthKeyUp:
		in.ReleaseKey(evt.key)
	case synthButtonDown:
		in.PressButton(evt.button)
	case synthButtonUp:
		in.ReleaseButton(evt.button)
	case synthMove:
		in.MoveMouse(evt.x, evt.y)
	case synthScroll:
		in.ScrollWheel(evt.x, evt.y)
	}
	return true
}
