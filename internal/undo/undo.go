// Package undo keeps a bounded history of stroke states so transforms can be
// reversed.
package undo

import (
	"image/color"
	"log"

	"VRBoard/internal/geom"
	"VRBoard/internal/state"
)

// DefaultMaxSteps is the capacity used when a log is created with a
// non-positive size.
const DefaultMaxSteps = 20

// Snapshot is the saved state of a stroke before one mutation.
type Snapshot struct {
	Stroke  *state.Stroke
	Points  []geom.Vec3
	Color   color.NRGBA // true color, never the highlight overlay
	Deleted bool        // the mutation was a soft delete
}

// Log is a fixed-capacity stack of snapshots. When full, pushing evicts the
// oldest entry. There is no redo.
type Log struct {
	ring  []Snapshot
	head  int // index of the oldest entry
	count int
}

// New creates a log holding at most maxSteps snapshots.
func New(maxSteps int) *Log {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Log{ring: make([]Snapshot, maxSteps)}
}

func (l *Log) Len() int { return l.count }

func (l *Log) Cap() int { return len(l.ring) }

// Push records the current state of s. Set deleted when s is about to be
// soft-deleted.
func (l *Log) Push(s *state.Stroke, deleted bool) {
	if s == nil {
		return
	}
	snap := Snapshot{
		Stroke:  s,
		Points:  s.Points(),
		Color:   s.Color(),
		Deleted: deleted,
	}

	if l.count == len(l.ring) {
		l.ring[l.head] = Snapshot{}
		l.head = (l.head + 1) % len(l.ring)
		l.count--
	}
	l.ring[(l.head+l.count)%len(l.ring)] = snap
	l.count++
}

// Peek returns the snapshot Undo would restore.
func (l *Log) Peek() (Snapshot, bool) {
	if l.count == 0 {
		return Snapshot{}, false
	}
	return l.ring[(l.head+l.count-1)%len(l.ring)], true
}

// Undo restores the most recent snapshot and returns the affected stroke.
// A deleted snapshot only restores liveness. Others restore points and the
// true color; any highlight overlay is left alone so clearing it later
// reveals the restored color.
func (l *Log) Undo() (*state.Stroke, bool) {
	snap, ok := l.Peek()
	if !ok {
		log.Printf("[UNDO] Nothing to undo")
		return nil, false
	}
	top := (l.head + l.count - 1) % len(l.ring)
	l.ring[top] = Snapshot{}
	l.count--

	s := snap.Stroke
	if snap.Deleted {
		s.SetLive(true)
		log.Printf("[UNDO] Restored deleted stroke %s", s.ID)
		return s, true
	}
	s.SetPoints(snap.Points)
	s.SetColor(snap.Color)
	log.Printf("[UNDO] Restored stroke %s (%d points)", s.ID, len(snap.Points))
	return s, true
}

// Clear drops every snapshot.
func (l *Log) Clear() {
	for i := range l.ring {
		l.ring[i] = Snapshot{}
	}
	l.head, l.count = 0, 0
}
