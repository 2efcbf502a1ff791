package websocket

import (
	"github.com/ramonehamilton/precon-analyzer/internal/analysis"
)

// EventAnalysisProgress is sent for every job state change.
const EventAnalysisProgress = "analysis:progress"

// ProgressForwarder broadcasts job progress to WebSocket clients.
type ProgressForwarder struct {
	hub *Hub
}

// NewProgressForwarder creates an analysis observer that forwards to hub.
func NewProgressForwarder(hub *Hub) *ProgressForwarder {
	return &ProgressForwarder{hub: hub}
}

// JobChanged implements analysis.Observer.
func (f *ProgressForwarder) JobChanged(p analysis.Progress) {
	if f.hub == nil {
		return
	}
	f.hub.BroadcastEvent(Event{Type: EventAnalysisProgress, Data: p})
}

var _ analysis.Observer = (*ProgressForwarder)(nil)
