package command

import (
	"image/color"
	"log"
	"time"

	"VRBoard/internal/geom"
	"VRBoard/internal/selection"
	"VRBoard/internal/state"
	"VRBoard/internal/transform"
	"VRBoard/internal/undo"
)

// Kind is the interaction model of a workflow.
type Kind int

const (
	// KindRayMenu: point with the controller, trigger to commit, pick a menu action.
	KindRayMenu Kind = iota
	// KindGazeVoice: look at a stroke and speak a command.
	KindGazeVoice
)

func (k Kind) String() string {
	if k == KindGazeVoice {
		return "gaze-voice"
	}
	return "ray-menu"
}

// ParseKind maps "ray-menu" or "gaze-voice" to its Kind.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "ray-menu":
		return KindRayMenu, true
	case "gaze-voice":
		return KindGazeVoice, true
	}
	return KindRayMenu, false
}

// Config tunes a workflow.
type Config struct {
	Selection         selection.Config
	MaxUndoSteps      int
	RoundResolution   int
	SimplifyTolerance float32
	// RecolorColor is used when a recolor names no color.
	RecolorColor color.NRGBA
}

// Workflow owns one selector and one undo log and turns commands into
// transforms on the current target.
type Workflow struct {
	kind Kind
	cfg  Config

	Selector *selection.Selector
	History  *undo.Log
	Resolver Resolver
	Metrics  MetricsSink

	task   Task
	active bool
}

// NewWorkflow creates an inactive workflow selecting from source.
func NewWorkflow(kind Kind, cfg Config, source selection.Source) *Workflow {
	policy := selection.PolicyRay
	if kind == KindGazeVoice {
		policy = selection.PolicyGaze
	}
	w := &Workflow{
		kind:     kind,
		cfg:      cfg,
		Selector: selection.NewSelector(cfg.Selection, policy, source),
		History:  undo.New(cfg.MaxUndoSteps),
		Resolver: NewKeywordResolver(DefaultRules),
		Metrics:  NopSink{},
	}
	w.Selector.OnTargetCheck = func(s *state.Stroke, correct bool) {
		id := ""
		if s != nil {
			id = s.ID
		}
		w.Metrics.TargetChecked(kind.String(), id, correct)
	}
	return w
}

func (w *Workflow) Kind() Kind { return w.kind }

func (w *Workflow) Active() bool { return w.active }

// SetTask installs the harness's current trial; nil ends it.
func (w *Workflow) SetTask(t Task) {
	w.task = t
	if t == nil {
		w.Selector.Targets = nil
		return
	}
	w.Selector.Targets = t
}

func (w *Workflow) Activate() {
	w.active = true
	log.Printf("[CMD] %s workflow active", w.kind)
}

// Deactivate clears hover and selection so no highlight is left behind.
func (w *Workflow) Deactivate() {
	w.active = false
	w.Selector.Deactivate()
}

// Update feeds this frame's ray to the selector.
func (w *Workflow) Update(ray geom.Ray, now time.Time) {
	if !w.active {
		return
	}
	w.Selector.Update(ray, now)
}

// Commit handles a select trigger. In the ray workflow it promotes the
// hovered stroke; a commit with nothing hovered is a mode error and a commit
// on a stroke outside the task's targets is a wrong-target error.
func (w *Workflow) Commit() (*state.Stroke, bool) {
	if !w.active {
		return nil, false
	}
	s, ok := w.Selector.Commit()
	if !ok {
		w.Metrics.ModeError(w.kind.String(), "commit on empty space")
		return nil, false
	}
	if w.kind == KindRayMenu && !w.Selector.IsTarget(s) {
		w.Metrics.WrongTargetError(w.kind.String(), s.ID)
	}
	return s, true
}

// HandleTranscript resolves a voice utterance and executes it.
func (w *Workflow) HandleTranscript(text string) bool {
	if !w.active {
		return false
	}
	cmd, ok := w.Resolver.Resolve(text)
	if !ok {
		log.Printf("[CMD] Unrecognized phrase %q", text)
		w.Metrics.WrongFunctionError(w.kind.String(), text)
		return false
	}
	return w.Execute(cmd)
}

// HandleMenuAction executes a menu action given by intent name or label.
func (w *Workflow) HandleMenuAction(name string) bool {
	if !w.active {
		return false
	}
	if intent, ok := ParseIntent(name); ok {
		return w.Execute(Command{Intent: intent, Phrase: name, FromMenu: true})
	}
	cmd, ok := w.Resolver.Resolve(name)
	if !ok {
		log.Printf("[CMD] Unknown menu action %q", name)
		w.Metrics.WrongFunctionError(w.kind.String(), name)
		return false
	}
	cmd.FromMenu = true
	return w.Execute(cmd)
}

// Execute applies cmd to the current target, snapshotting it first. It
// returns false when nothing changed.
func (w *Workflow) Execute(cmd Command) bool {
	switch cmd.Intent {
	case IntentUndo:
		return w.Undo()
	case IntentDeselect:
		w.Selector.Clear()
		return true
	case IntentNone:
		w.Metrics.WrongFunctionError(w.kind.String(), cmd.Phrase)
		return false
	}

	if w.task != nil {
		if expected, ok := w.task.ExpectedIntent(); ok && expected != cmd.Intent {
			w.Metrics.WrongFunctionError(w.kind.String(), cmd.Phrase)
		}
	}

	target := w.Selector.Target()
	if target == nil {
		w.Metrics.ModeError(w.kind.String(), "no target for "+cmd.Intent.String())
		return false
	}
	if w.kind == KindGazeVoice && !w.Selector.IsTarget(target) {
		w.Metrics.WrongTargetError(w.kind.String(), target.ID)
	}

	kind := transformKind(cmd.Intent)
	if !transform.CanApply(kind, target) {
		log.Printf("[CMD] %s on stroke %s skipped (%d points)", kind, target.ID, target.Len())
		return false
	}

	w.History.Push(target, kind == transform.KindDelete)
	switch kind {
	case transform.KindRecolor:
		c := w.cfg.RecolorColor
		if cmd.Color != nil {
			c = *cmd.Color
		}
		transform.Recolor(target, c)
	case transform.KindLinearize:
		transform.Linearize(target)
	case transform.KindRound:
		transform.Round(target, w.cfg.RoundResolution)
	case transform.KindSimplify:
		transform.Simplify(target, w.cfg.SimplifyTolerance)
	case transform.KindDelete:
		transform.Delete(target)
	}
	log.Printf("[CMD] %s applied to stroke %s", kind, target.ID)

	if kind == transform.KindDelete {
		w.Selector.Clear()
	} else {
		w.Selector.Refresh()
	}
	return true
}

// Undo reverts the most recent transform of this workflow.
func (w *Workflow) Undo() bool {
	if _, ok := w.History.Undo(); !ok {
		return false
	}
	w.Selector.Refresh()
	return true
}

func transformKind(i Intent) transform.Kind {
	switch i {
	case IntentLinearize:
		return transform.KindLinearize
	case IntentRound:
		return transform.KindRound
	case IntentSimplify:
		return transform.KindSimplify
	case IntentDelete:
		return transform.KindDelete
	default:
		return transform.KindRecolor
	}
}
