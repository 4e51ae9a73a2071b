package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/runtime"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/ui"
	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

const (
	maxFilterLen  = 2048
	sseKeepAlive  = 15 * time.Second
	wsWriteWait   = 10 * time.Second
	anonGroupPref = "anon-"
)

// UIController serves the outbound UI call stream and the UI registry.
type UIController struct {
	rt       *runtime.Runtime
	logger   logpkg.Logger
	upgrader websocket.Upgrader
}

// NewUIController creates a new UI controller.
func NewUIController(rt *runtime.Runtime, logger logpkg.Logger) *UIController {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	return &UIController{
		rt:     rt,
		logger: logger.With(logpkg.Component("http.ui")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// RegisterRoutes registers the UI routes with the given mux.
//
// This method sets up HTTP endpoints for:
// - Call streaming (/v1/ui/events over SSE, /v1/ui/ws over WebSocket)
// - Cursor acknowledgement (/v1/ui/ack)
// - Paged reads (/v1/ui/calls)
// - The plugin registry snapshot (/v1/ui/registry)
func (c *UIController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/ui/events", c.handleEvents)
	mux.HandleFunc("/v1/ui/ws", c.handleWebSocket)
	mux.HandleFunc("/v1/ui/ack", c.handleAck)
	mux.HandleFunc("/v1/ui/calls", c.handleCalls)
	mux.HandleFunc("/v1/ui/registry", c.handleRegistry)
}

// subscribeParams are the query options shared by the streaming endpoints.
type subscribeParams struct {
	group   string
	filter  ui.Filter
	fromSeq uint64
	limit   int
	autoAck bool
}

// parseSubscribe reads group, filter, from (earliest|latest), limit and ack
// from the query. A missing group gets a fresh anonymous one. Last-Event-ID
// resumes after the named call when the group has no acknowledged cursor.
func (c *UIController) parseSubscribe(r *http.Request) (subscribeParams, error) {
	q := r.URL.Query()
	p := subscribeParams{group: q.Get("group"), limit: parseLimit(q.Get("limit")), autoAck: q.Get("ack") == "auto"}
	if p.group == "" {
		p.group = anonGroupPref + ulid.Make().String()
	}
	expr := q.Get("filter")
	if len(expr) > maxFilterLen {
		return p, errors.New("Filter too long")
	}
	f, err := ui.NewFilter(expr)
	if err != nil {
		return p, errors.New("Invalid filter")
	}
	p.filter = f
	switch q.Get("from") {
	case "", "earliest":
	case "latest":
		p.fromSeq = c.rt.Outbox().LastSeq() + 1
	default:
		return p, errors.New("Invalid from")
	}
	if last := r.Header.Get("Last-Event-ID"); last != "" {
		if n, err := strconv.ParseUint(last, 10, 64); err == nil {
			p.fromSeq = n + 1
		}
	}
	return p, nil
}

// handleEvents streams UI calls as Server-Sent Events.
//
// The first event is "hello" carrying the cursor group. Calls follow as
// "call" events. Without ack=auto the client acknowledges via /v1/ui/ack;
// unacknowledged calls are sent again on the next connection of the group.
func (c *UIController) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	p, err := c.parseSubscribe(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	sink := sseSink{w: w}
	if err := sink.Hello(p.group); err != nil {
		return
	}
	_ = sink.Flush()

	ctx := r.Context()
	sub := c.rt.Outbox().Subscribe(p.group, p.filter, p.fromSeq)
	for {
		wctx, cancel := context.WithTimeout(ctx, sseKeepAlive)
		calls, err := sub.Next(wctx, p.limit)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			_ = sink.Flush()
			continue
		}
		for _, call := range calls {
			if err := sink.Send(call); err != nil {
				return
			}
		}
		_ = sink.Flush()
		if p.autoAck {
			if err := sub.Ack(calls[len(calls)-1].Seq); err != nil {
				c.logger.Warn("auto ack failed", logpkg.Str("group", p.group), logpkg.Err(err))
			}
		}
	}
}

// handleWebSocket runs a bidirectional session: text frames in are command
// lines or {"ack": seq}; frames out are the hello message and UI calls.
func (c *UIController) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	p, err := c.parseSubscribe(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	sub := c.rt.Outbox().Subscribe(p.group, p.filter, p.fromSeq)
	log := c.logger.With(logpkg.Str("group", p.group))
	log.Debug("websocket connected")
	go c.readLoop(ctx, cancel, conn, sub, log)

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(helloEvent{Group: p.group}); err != nil {
		return
	}
	for {
		calls, err := sub.Next(ctx, p.limit)
		if err != nil {
			log.Debug("websocket closed", logpkg.Err(err))
			return
		}
		for _, call := range calls {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(call); err != nil {
				return
			}
		}
		if p.autoAck {
			_ = sub.Ack(calls[len(calls)-1].Seq)
		}
	}
}

func (c *UIController) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sub *ui.Subscription, log logpkg.Logger) {
	defer cancel()
	conn.SetReadLimit(maxCommandBytes)
	// Commands started by a frame finish even if the socket drops.
	dctx := context.WithoutCancel(ctx)
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage || len(data) == 0 {
			continue
		}
		if data[0] == '{' {
			var f wsFrame
			if err := json.Unmarshal(data, &f); err != nil || f.Ack == nil {
				log.Debug("ignoring frame", logpkg.Int("bytes", len(data)))
				continue
			}
			if err := sub.Ack(*f.Ack); err != nil {
				log.Warn("ack failed", logpkg.Err(err))
			}
			continue
		}
		c.rt.Router().Dispatch(dctx, string(data))
	}
}

// handleAck commits a group's cursor.
//
// Expects {"group": "...", "seq": n}. Lower sequences than the current
// cursor are ignored. Returns 204 No Content on success.
func (c *UIController) handleAck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req ackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Group == "" {
		writeError(w, http.StatusBadRequest, "Missing group")
		return
	}
	if err := c.rt.Outbox().Ack(req.Group, req.Seq); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to ack")
		return
	}
	writeNoContent(w)
}

// handleCalls returns up to limit calls after the given sequence.
func (c *UIController) handleCalls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	after, err := parseSeq(r.URL.Query().Get("after"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid after")
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"))
	if limit == 0 {
		limit = 100
	}
	ob := c.rt.Outbox()
	calls, err := ob.Read(after, limit)
	if err != nil {
		c.logger.Error("read calls", logpkg.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to read calls")
		return
	}
	writeJSON(w, callsResp{Calls: calls, LastSeq: ob.LastSeq()})
}

// handleRegistry returns the UI registry snapshot.
func (c *UIController) handleRegistry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	snap := c.rt.Registry().Snapshot()
	writeJSON(w, map[string]any{"registry": snap, "modes": snap.Modes(), "plugins": snap.Plugins()})
}
