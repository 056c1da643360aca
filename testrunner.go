package birch

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// testStep is a single action in a test script.
type testStep struct {
	Action string  `yaml:"action"`
	Key    string  `yaml:"key,omitempty"`
	Button int     `yaml:"button,omitempty"`
	Label  string  `yaml:"label,omitempty"`
	X      float32 `yaml:"x,omitempty"`
	Y      float32 `yaml:"y,omitempty"`
	ToX    float32 `yaml:"toX,omitempty"`
	ToY    float32 `yaml:"toY,omitempty"`
	Frames int     `yaml:"frames,omitempty"`

	key Key
}

type testScript struct {
	Steps []testStep `yaml:"steps"`
}

// TestRunner sequences injected input and screenshots across ticks for
// automated visual testing. Attach it with App.SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a YAML test script. Supported actions are key, hold,
// release, move, click, drag, scroll, wait, screenshot and quit.
func LoadTestScript(data []byte) (*TestRunner, error) {
	var script testScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i := range script.Steps {
		st := &script.Steps[i]
		switch st.Action {
		case "key", "hold", "release":
			if err := st.key.UnmarshalText([]byte(st.Key)); err != nil {
				return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
			}
		case "move", "click", "drag", "scroll", "wait", "screenshot", "quit":
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a runner. Its step runs at the start of every Tick.
func (a *App) SetTestRunner(r *TestRunner) { a.testRunner = r }

// Done reports whether every step has executed.
func (r *TestRunner) Done() bool { return r.done }

// step advances the runner by one tick.
func (r *TestRunner) step(a *App) {
	if r.done {
		return
	}
	in := a.input
	if in.Injecting() {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "key":
		in.InjectKey(st.key)
	case "hold":
		in.InjectKeyDown(st.key)
	case "release":
		in.InjectKeyUp(st.key)
	case "move":
		in.InjectMove(st.X, st.Y)
	case "click":
		in.InjectClick(MouseButton(st.Button), st.X, st.Y)
	case "drag":
		in.InjectDrag(MouseButton(st.Button), st.X, st.Y, st.ToX, st.ToY, st.Frames)
	case "scroll":
		in.InjectScroll(st.X, st.Y)
	case "screenshot":
		a.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	case "quit":
		a.Quit()
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && !in.Injecting() {
		r.done = true
	}
}
