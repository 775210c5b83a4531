package command

import (
	"image/color"
	"testing"
	"time"

	"VRBoard/internal/geom"
	"VRBoard/internal/selection"
	"VRBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = color.NRGBA{A: 255}
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

type recorder struct {
	modes, wrongTargets, wrongFunctions []string
	checks                              int
}

func (r *recorder) ModeError(_, reason string) { r.modes = append(r.modes, reason) }
func (r *recorder) WrongTargetError(_, id string) { r.wrongTargets = append(r.wrongTargets, id) }
func (r *recorder) WrongFunctionError(_, input string) { r.wrongFunctions = append(r.wrongFunctions, input) }
func (r *recorder) TargetChecked(string, string, bool) { r.checks++ }

func testConfig() Config {
	return Config{
		Selection: selection.Config{
			SelectionRadius: 0.05,
			MaxRayLength:    10,
			SwitchLockTime:  300 * time.Millisecond,
			SwitchThreshold: 0.01,
			DeselectDelay:   200 * time.Millisecond,
			HoverTint:       color.NRGBA{R: 255, G: 255, A: 255},
			HoverBlend:      0.5,
			SelectColor:     color.NRGBA{G: 255, B: 255, A: 255},
		},
		MaxUndoSteps:      20,
		RoundResolution:   30,
		SimplifyTolerance: 0.01,
		RecolorColor:      black,
	}
}

// wiggle returns a stroke along Y at the given x with a small bend, crossing z=1.
func wiggle(x float32) *state.Stroke {
	s := state.NewStroke(black, nil)
	s.SetPoints([]geom.Vec3{
		geom.V3(x, -0.5, 1),
		geom.V3(x+0.01, 0, 1),
		geom.V3(x, 0.5, 1),
	})
	return s
}

func aim(x float32) geom.Ray {
	return geom.NewRay(geom.V3(x, 0, 0), geom.Forward)
}

func setup(t *testing.T, kind Kind, strokes ...*state.Stroke) (*Workflow, *recorder) {
	t.Helper()
	reg := state.NewRegistry()
	for _, s := range strokes {
		require.True(t, reg.Add(s))
	}
	w := NewWorkflow(kind, testConfig(), reg)
	rec := &recorder{}
	w.Metrics = rec
	w.Activate()
	return w, rec
}

func TestResolve(t *testing.T) {
	r := NewKeywordResolver(DefaultRules)
	tests := []struct {
		phrase string
		intent Intent
		color  *color.NRGBA
		ok     bool
	}{
		{"make it red", IntentRecolor, &red, true},
		{"Paint this blue!", IntentRecolor, &blue, true},
		{"color it", IntentRecolor, nil, true},
		{"dark slate gray", IntentRecolor, &color.NRGBA{R: 47, G: 79, B: 79, A: 255}, true},
		{"make it straight", IntentLinearize, nil, true},
		{"round it off", IntentRound, nil, true},
		{"smooth this", IntentSimplify, nil, true},
		{"delete the lines", IntentDelete, nil, true},
		{"undo the color", IntentUndo, nil, true},
		{"paint the line red", IntentRecolor, &red, true},
		{"color this line blue", IntentRecolor, &blue, true},
		{"make the curve red", IntentRecolor, &red, true},
		{"change the color of the circle to red", IntentRecolor, &red, true},
		{"delete the red line", IntentDelete, &red, true},
		{"undo the blue circle", IntentUndo, &blue, true},
		{"never mind", IntentDeselect, nil, true},
		{"hello there", IntentNone, nil, false},
		{"", IntentNone, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			cmd, ok := r.Resolve(tt.phrase)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.intent, cmd.Intent)
			if tt.color == nil {
				assert.Nil(t, cmd.Color)
			} else {
				require.NotNil(t, cmd.Color)
				assert.Equal(t, *tt.color, *cmd.Color)
			}
		})
	}
}

func TestParseIntent(t *testing.T) {
	for i := IntentRecolor; i <= IntentDeselect; i++ {
		got, ok := ParseIntent(i.String())
		assert.True(t, ok)
		assert.Equal(t, i, got)
	}
	_, ok := ParseIntent("none")
	assert.False(t, ok)
}

func TestRayMenuLinearizeAndUndo(t *testing.T) {
	s := wiggle(0)
	w, rec := setup(t, KindRayMenu, s)
	before := s.Points()

	w.Update(aim(0), time.Unix(0, 0))
	got, ok := w.Commit()
	require.True(t, ok)
	require.Same(t, s, got)

	require.True(t, w.HandleMenuAction("linearize"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, w.History.Len())
	assert.Same(t, s, w.Selector.Selected(), "selection survives a transform")

	require.True(t, w.HandleMenuAction("undo"))
	assert.Equal(t, before, s.Points())
	assert.Equal(t, 0, w.History.Len())
	assert.Empty(t, rec.modes)
	assert.Empty(t, rec.wrongFunctions)
}

func TestCommitOnEmptySpace(t *testing.T) {
	w, rec := setup(t, KindRayMenu, wiggle(0))
	w.Update(aim(2), time.Unix(0, 0))
	_, ok := w.Commit()
	assert.False(t, ok)
	assert.Len(t, rec.modes, 1)
}

func TestCommandWithoutTarget(t *testing.T) {
	w, rec := setup(t, KindRayMenu, wiggle(0))
	assert.False(t, w.HandleMenuAction("delete"))
	assert.Len(t, rec.modes, 1)
	assert.Equal(t, 0, w.History.Len())
}

func TestWrongTargetStillExecutes(t *testing.T) {
	target, other := wiggle(0), wiggle(1)
	w, rec := setup(t, KindRayMenu, target, other)
	w.SetTask(NewStaticTask(IntentNone, target))

	w.Update(aim(1), time.Unix(0, 0))
	_, ok := w.Commit()
	require.True(t, ok)
	assert.Equal(t, []string{other.ID}, rec.wrongTargets)
	assert.Equal(t, 1, rec.checks)

	require.True(t, w.HandleMenuAction("delete"))
	assert.False(t, other.Live())
	assert.Nil(t, w.Selector.Target(), "selection cleared after delete")

	require.True(t, w.Undo())
	assert.True(t, other.Live())
}

func TestGazeVoiceRecolor(t *testing.T) {
	s := wiggle(0)
	w, rec := setup(t, KindGazeVoice, s)
	w.Update(aim(0), time.Unix(0, 0))
	require.Same(t, s, w.Selector.Target())

	require.True(t, w.HandleTranscript("paint it blue"))
	assert.Equal(t, blue, s.Color())
	assert.True(t, s.Highlighted(), "still hovered")
	assert.NotEqual(t, blue, s.DisplayColor())

	require.True(t, w.HandleTranscript("undo"))
	assert.Equal(t, black, s.Color())
	assert.Equal(t, 1, rec.checks)
}

func TestGazeWrongTarget(t *testing.T) {
	target, other := wiggle(0), wiggle(1)
	w, rec := setup(t, KindGazeVoice, target, other)
	w.SetTask(NewStaticTask(IntentNone, target))

	w.Update(aim(1), time.Unix(0, 0))
	require.True(t, w.HandleTranscript("make it straight"))
	assert.Equal(t, []string{other.ID}, rec.wrongTargets)
	assert.Equal(t, 2, other.Len())
}

func TestUnrecognizedPhrase(t *testing.T) {
	s := wiggle(0)
	w, rec := setup(t, KindGazeVoice, s)
	w.Update(aim(0), time.Unix(0, 0))

	assert.False(t, w.HandleTranscript("what a lovely day"))
	assert.Equal(t, []string{"what a lovely day"}, rec.wrongFunctions)
	assert.Equal(t, 3, s.Len())
}

func TestExpectedIntentMismatch(t *testing.T) {
	s := wiggle(0)
	w, rec := setup(t, KindGazeVoice, s)
	w.SetTask(NewStaticTask(IntentRound, s))
	w.Update(aim(0), time.Unix(0, 0))

	require.True(t, w.HandleTranscript("delete it"))
	assert.Equal(t, []string{"delete it"}, rec.wrongFunctions)
	assert.False(t, s.Live())
}

func TestPreconditionSkipsSnapshot(t *testing.T) {
	s := state.NewStroke(black, nil)
	s.SetPoints([]geom.Vec3{geom.V3(0, -0.5, 1), geom.V3(0, 0.5, 1)})
	w, _ := setup(t, KindGazeVoice, s)
	w.Update(aim(0), time.Unix(0, 0))

	assert.False(t, w.HandleTranscript("simplify"), "simplify needs three points")
	assert.Equal(t, 0, w.History.Len())
}

func TestRoundClosedStrokeSkipsSnapshot(t *testing.T) {
	s := state.NewStroke(black, nil)
	loop := []geom.Vec3{
		geom.V3(0, -0.1, 1), geom.V3(0.1, -0.1, 1), geom.V3(0.1, 0.1, 1), geom.V3(0, 0.1, 1), geom.V3(0, -0.1, 1),
	}
	s.SetPoints(loop)
	w, _ := setup(t, KindGazeVoice, s)
	w.Update(aim(0), time.Unix(0, 0))
	require.Equal(t, s, w.Selector.Target())

	assert.False(t, w.HandleTranscript("make it round"))
	assert.Equal(t, 0, w.History.Len())
	assert.Equal(t, loop, s.Points())
}

func TestUndoUnderflow(t *testing.T) {
	w, rec := setup(t, KindRayMenu)
	assert.False(t, w.HandleMenuAction("undo"))
	assert.Empty(t, rec.modes)
}

func TestInactiveWorkflowIgnoresInput(t *testing.T) {
	s := wiggle(0)
	w, _ := setup(t, KindGazeVoice, s)
	w.Update(aim(0), time.Unix(0, 0))
	w.Deactivate()

	assert.False(t, s.Highlighted())
	assert.False(t, w.HandleTranscript("delete"))
	assert.True(t, s.Live())
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindRayMenu, KindGazeVoice} {
		got, ok := ParseKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("telepathy")
	assert.False(t, ok)
}
