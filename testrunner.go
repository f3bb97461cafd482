package pinchzoom

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// testTouch is one touch point in a "touch" step.
type testTouch struct {
	ID int     `yaml:"id"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
}

// testStep represents a single action in a test script.
type testStep struct {
	Action   string      `yaml:"action"`
	Label    string      `yaml:"label,omitempty"`
	X        float64     `yaml:"x,omitempty"`
	Y        float64     `yaml:"y,omitempty"`
	FromX    float64     `yaml:"fromX,omitempty"`
	FromY    float64     `yaml:"fromY,omitempty"`
	ToX      float64     `yaml:"toX,omitempty"`
	ToY      float64     `yaml:"toY,omitempty"`
	FromSpan float64     `yaml:"fromSpan,omitempty"`
	ToSpan   float64     `yaml:"toSpan,omitempty"`
	Touches  []testTouch `yaml:"touches,omitempty"`
	Frames   int         `yaml:"frames,omitempty"`
}

// testScript is the top-level structure for a test script.
type testScript struct {
	Steps []testStep `yaml:"steps"`
}

var knownActions = map[string]bool{
	"screenshot": true,
	"click":      true,
	"drag":       true,
	"pinch":      true,
	"touch":      true,
	"wait":       true,
}

// TestRunner sequences injected input events and screenshots across frames
// for automated visual testing. Attach to a Scene via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a YAML (or JSON) test script and returns a
// TestRunner ready to be attached to a Scene via SetTestRunner.
func LoadTestScript(data []byte) (*TestRunner, error) {
	var script testScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the scene. The runner's step method
// is called from Scene.Update before processInput each frame.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one frame. Called from Scene.Update.
func (r *TestRunner) step(s *Scene) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if s.pendingInjections() {
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
	case "screenshot":
		s.Screenshot(st.Label)
	case "click":
		s.InjectClick(st.X, st.Y)
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "pinch":
		s.InjectPinch(st.X, st.Y, st.FromSpan, st.ToSpan, max(st.Frames, 2))
	case "touch":
		points := make([]TouchPoint, len(st.Touches))
		for i, tt := range st.Touches {
			points[i] = TouchPoint{ID: tt.ID, X: tt.X, Y: tt.Y}
		}
		s.InjectTouches(points...)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && !s.pendingInjections() {
		r.done = true
	}
}
