package command

import (
	"log"

	"VRBoard/internal/state"
)

// MetricsSink observes user errors. Calls are fire-and-forget.
type MetricsSink interface {
	// ModeError: a trigger or command with nothing to act on.
	ModeError(workflow, reason string)
	// WrongTargetError: a valid command applied to a stroke outside the task's targets.
	WrongTargetError(workflow string, strokeID string)
	// WrongFunctionError: input that matched no intent, or not the one the task expects.
	WrongFunctionError(workflow string, input string)
	// TargetChecked observes every target validation; strokeID is empty
	// when there was no stroke to check.
	TargetChecked(workflow string, strokeID string, correct bool)
}

// Task is the experiment harness's view of the current trial.
type Task interface {
	IsTarget(strokeID string) bool
	// ExpectedIntent is the function the trial asks for, if any.
	ExpectedIntent() (Intent, bool)
}

// NopSink discards every notification.
type NopSink struct{}

func (NopSink) ModeError(string, string)          {}
func (NopSink) WrongTargetError(string, string)   {}
func (NopSink) WrongFunctionError(string, string) {}
func (NopSink) TargetChecked(string, string, bool) {}

// LogSink writes notifications to the standard logger.
type LogSink struct{}

func (LogSink) ModeError(workflow, reason string) {
	log.Printf("[METRICS] %s: mode error: %s", workflow, reason)
}

func (LogSink) WrongTargetError(workflow, strokeID string) {
	log.Printf("[METRICS] %s: wrong target %s", workflow, strokeID)
}

func (LogSink) WrongFunctionError(workflow, input string) {
	log.Printf("[METRICS] %s: wrong function %q", workflow, input)
}

func (LogSink) TargetChecked(workflow, strokeID string, correct bool) {
	log.Printf("[METRICS] %s: target check %s correct=%t", workflow, strokeID, correct)
}

// StaticTask is a fixed set of target strokes and an optional expected intent.
type StaticTask struct {
	Targets  map[string]bool
	Expected Intent
}

// NewStaticTask marks strokes as the targets of a trial.
func NewStaticTask(expected Intent, targets ...*state.Stroke) *StaticTask {
	t := &StaticTask{Targets: make(map[string]bool, len(targets)), Expected: expected}
	for _, s := range targets {
		if s != nil {
			t.Targets[s.ID] = true
		}
	}
	return t
}

func (t *StaticTask) IsTarget(id string) bool { return t.Targets[id] }

func (t *StaticTask) ExpectedIntent() (Intent, bool) {
	return t.Expected, t.Expected != IntentNone
}
