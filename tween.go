package birch

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

type tweenTrack uint8

const (
	trackPosition tweenTrack = iota
	trackScale
	trackRotation
)

// Tween is a component that animates its entity's local position, scale or
// rotation. Start values are read from the transform when the component is
// added. Rotation is interpolated with a spherical lerp driven by a single
// 0 to 1 tween.
type Tween struct {
	ComponentBase

	// OnComplete runs once, on the tick the tween finishes.
	OnComplete func()
	// DestroyOnComplete destroys the component after OnComplete.
	DestroyOnComplete bool

	track    tweenTrack
	to       mgl32.Vec3
	toRot    mgl32.Quat
	fromRot  mgl32.Quat
	duration float32
	fn       ease.TweenFunc
	tweens   [3]*gween.Tween
	count    int
	done     bool
}

// TweenPosition creates a Tween moving the local position to p.
func TweenPosition(p mgl32.Vec3, duration float32, fn ease.TweenFunc) *Tween {
	return newTween(trackPosition, p, duration, fn)
}

// TweenScale creates a Tween scaling the local scale to s.
func TweenScale(s mgl32.Vec3, duration float32, fn ease.TweenFunc) *Tween {
	return newTween(trackScale, s, duration, fn)
}

// TweenRotation creates a Tween turning the local rotation to q.
func TweenRotation(q mgl32.Quat, duration float32, fn ease.TweenFunc) *Tween {
	tw := newTween(trackRotation, mgl32.Vec3{}, duration, fn)
	tw.toRot = normalizeQuat(q)
	return tw
}

func newTween(track tweenTrack, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	return &Tween{track: track, to: to, duration: duration, fn: fn}
}

// Done reports whether the tween has reached its target.
func (tw *Tween) Done() bool { return tw.done }

func (tw *Tween) OnInit() {
	t := tw.Transform()
	switch tw.track {
	case trackRotation:
		tw.fromRot = t.Rotation()
		tw.tweens[0] = gween.New(0, 1, tw.duration, tw.fn)
		tw.count = 1
	default:
		from := t.Position()
		if tw.track == trackScale {
			from = t.Scale()
		}
		for i := 0; i < 3; i++ {
			tw.tweens[i] = gween.New(from[i], tw.to[i], tw.duration, tw.fn)
		}
		tw.count = 3
	}
}

func (tw *Tween) OnUpdate(dt float32) {
	if tw.done {
		return
	}
	var vals [3]float32
	allDone := true
	for i := 0; i < tw.count; i++ {
		v, finished := tw.tweens[i].Update(dt)
		vals[i] = v
		if !finished {
			allDone = false
		}
	}

	t := tw.Transform()
	switch tw.track {
	case trackPosition:
		t.SetPosition(mgl32.Vec3(vals))
	case trackScale:
		t.SetScale(mgl32.Vec3(vals))
	case trackRotation:
		t.SetRotation(mgl32.QuatSlerp(tw.fromRot, tw.toRot, vals[0]))
	}

	if !allDone {
		return
	}
	tw.done = true
	if tw.OnComplete != nil {
		tw.OnComplete()
	}
	if tw.DestroyOnComplete {
		tw.Destroy()
	}
}
