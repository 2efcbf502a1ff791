package handlers

import (
	"net/http"

	"github.com/ramonehamilton/precon-analyzer/internal/api/response"
	"github.com/ramonehamilton/precon-analyzer/internal/metrics"
)

// ClientCounter reports connected push clients.
type ClientCounter interface {
	ClientCount() int
}

// SystemHandler handles operational requests.
type SystemHandler struct {
	metrics *metrics.PricingMetrics
	clients ClientCounter
}

// NewSystemHandler creates a new SystemHandler. Both arguments may be nil.
func NewSystemHandler(m *metrics.PricingMetrics, clients ClientCounter) *SystemHandler {
	return &SystemHandler{metrics: m, clients: clients}
}

// SystemMetrics is the JSON metrics snapshot.
type SystemMetrics struct {
	Pricing          *metrics.PricingStats `json:"pricing"`
	WebSocketClients int                   `json:"websocket_clients"`
}

// GetMetrics returns lookup and job counters.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	out := SystemMetrics{Pricing: h.metrics.GetStats()}
	if h.clients != nil {
		out.WebSocketClients = h.clients.ClientCount()
	}
	response.OK(w, out)
}
