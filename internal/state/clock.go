package state

import "sync/atomic"

var revision uint64

// nextRevision stamps mutations so renderers can detect what changed since
// their last push.
func nextRevision() uint64 {
	return atomic.AddUint64(&revision, 1)
}
