package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/ui"
)

// sseSink writes UI calls as Server-Sent Events.
//
// Each call becomes an event named "call" whose id is the outbox sequence,
// so a reconnecting EventSource reports the last seen call in Last-Event-ID.
type sseSink struct {
	w http.ResponseWriter
}

// Hello announces the cursor group the stream reads for.
func (s sseSink) Hello(group string) error {
	b, _ := json.Marshal(helloEvent{Group: group})
	return s.event("", "hello", b)
}

// Send formats and sends one call.
func (s sseSink) Send(c ui.Call) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.event(strconv.FormatUint(c.Seq, 10), "call", b)
}

func (s sseSink) event(id, name string, data []byte) error {
	if id != "" {
		if _, err := s.w.Write([]byte("id: " + id + "\n")); err != nil {
			return err
		}
	}
	if _, err := s.w.Write([]byte("event: " + name + "\ndata: ")); err != nil {
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	_, err := s.w.Write([]byte("\n\n"))
	return err
}

// Flush flushes the HTTP response writer if it supports flushing.
//
// This ensures that SSE events are immediately sent to the client.
func (s sseSink) Flush() error {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
