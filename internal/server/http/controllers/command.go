package controllers

import (
	"bufio"
	"net/http"
	"strings"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/runtime"
)

// maxCommandBytes bounds a POST /v1/command body.
const maxCommandBytes = 1 << 20

// CommandController accepts command lines from the frontend.
type CommandController struct {
	rt *runtime.Runtime
}

// NewCommandController creates a new command controller.
func NewCommandController(rt *runtime.Runtime) *CommandController {
	return &CommandController{rt: rt}
}

// RegisterRoutes registers /v1/command.
func (c *CommandController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/command", c.handleCommand)
}

// handleCommand dispatches each non-empty line of the body in order.
//
// Returns 202 Accepted: results reach the UI through the call stream.
func (c *CommandController) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	sc := bufio.NewScanner(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	sc.Buffer(make([]byte, 0, 64<<10), maxCommandBytes)
	var lines []string
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(lines) == 0 {
		writeError(w, http.StatusBadRequest, "Empty command")
		return
	}
	for _, line := range lines {
		c.rt.Router().Dispatch(r.Context(), line)
	}
	writeAccepted(w)
}
