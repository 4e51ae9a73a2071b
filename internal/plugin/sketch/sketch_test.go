package sketch

import (
	"context"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/plugin"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/ui"
)

type call struct {
	fn   string
	args []any
}

type recorder struct{ calls []call }

func (r *recorder) Eval(_ context.Context, fn string, args ...any) {
	r.calls = append(r.calls, call{fn, args})
}

func TestSketchVerbs(t *testing.T) {
	rec := &recorder{}
	reg := ui.NewRegistry()
	p := New(nil, plugin.Surface{Evaluator: rec, Scope: reg.Scope("sketch"), Manifest: plugin.Manifest{ID: "sketch"}})
	assert.Equal(t, p.ID(), "sketch")
	assert.Equal(t, p.Initialize(), nil)
	assert.Equal(t, reg.Snapshot().Modes()["sketch"], []string{"div:back", "core", "lst:chats", "plus"})

	ctx := context.Background()
	for _, v := range []string{"sketch:plus_button", "load_chat_extension", "backPressed", "kanban"} {
		assert.Equal(t, p.HandleRequest(ctx, []string{v}), nil)
	}
	assert.Equal(t, len(rec.calls), 3)
	assert.Equal(t, rec.calls[0].fn, "launch_snackbar")
	assert.Equal(t, rec.calls[0].args, []any{"This feature is currently deactivated"})
	assert.Equal(t, rec.calls[1].fn, "sketch_load_chat_extension")
	assert.Equal(t, rec.calls[2].fn, "sketch_back_pressed")
}
