package controllers

import (
	"net/http"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/runtime"
)

// GeneralController handles health and status endpoints.
type GeneralController struct {
	rt *runtime.Runtime
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime) *GeneralController {
	return &GeneralController{rt: rt}
}

// RegisterRoutes registers general routes with the given mux.
//
// This method sets up HTTP endpoints for:
// - Health checks (/v1/healthz)
// - Bridge status (/v1/status)
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/healthz", c.handleHealth)
	mux.HandleFunc("/v1/status", c.handleStatus)
}

// handleHealth returns the health status of the service.
//
// Returns 200 OK with {"status": "ok"} if healthy, 503 Service Unavailable otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleStatus reports identity, delivery cursors and outbox positions.
func (c *GeneralController) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	frontier, err := c.rt.Frontier().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read frontier")
		return
	}
	groups, err := c.rt.Outbox().Groups()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read outbox groups")
		return
	}
	plugins := make([]string, 0)
	for _, p := range c.rt.Plugins() {
		plugins = append(plugins, p.ID())
	}
	writeJSON(w, statusResp{
		Identity:      c.rt.Identity().Ref(),
		Ready:         c.rt.Router().Ready(),
		Frontier:      frontier,
		OutboxLastSeq: c.rt.Outbox().LastSeq(),
		Groups:        groups,
		Plugins:       plugins,
	})
}
