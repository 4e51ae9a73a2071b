package plugin

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/go-playground/assert/v2"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/ui"
)

type stubPlugin struct {
	id      string
	initErr error
	panicOn string
	seen    [][]string
}

func (p *stubPlugin) ID() string        { return p.id }
func (p *stubPlugin) Initialize() error { return p.initErr }
func (p *stubPlugin) HandleRequest(_ context.Context, args []string) error {
	if len(args) > 0 && args[0] == p.panicOn {
		panic("boom")
	}
	p.seen = append(p.seen, args)
	return nil
}

type nopEval struct{}

func (nopEval) Eval(context.Context, string, ...any) {}

func manifest(id, impl string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(`{"id":"` + id + `","name":"` + id + `","implementation":"` + impl + `","resources":{"scripts":["main.js"],"styles":["main.css"]}}`)}
}

func TestLoadAll(t *testing.T) {
	fsys := fstest.MapFS{
		"b_ok/manifest.json":      manifest("ok", "stub"),
		"b_ok/main.js":            {Data: []byte("//")},
		"a_fail/manifest.json":    manifest("fail", "failing"),
		"c_unknown/manifest.json": manifest("unknown", "nope"),
		"d_broken/manifest.json":  {Data: []byte("{")},
		"e_nomanifest/readme":     {Data: []byte("x")},
		"stray.txt":               {Data: []byte("x")},
	}
	reg := ui.NewRegistry()
	r := NewRegistry(nil, nopEval{}, reg, nil)
	r.lookup = func(name string) (Factory, bool) {
		switch name {
		case "stub":
			return func(_ App, s Surface) Plugin { return &stubPlugin{id: s.Manifest.ID} }, true
		case "failing":
			return func(_ App, s Surface) Plugin {
				s.AddScript("plugins/a_fail/x.js")
				return &stubPlugin{id: s.Manifest.ID, initErr: errors.New("init")}
			}, true
		}
		return nil, false
	}

	ps, err := r.LoadAll(context.Background(), fsys)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(ps), 1)
	assert.Equal(t, ps[0].ID(), "ok")

	snap := reg.Snapshot()
	assert.Equal(t, snap.Plugins(), []string{"ok"})
	assert.Equal(t, snap.Scripts, []ui.Resource{{Plugin: "ok", Path: "plugins/b_ok/main.js"}})
	assert.Equal(t, snap.Styles, []ui.Resource{{Plugin: "ok", Path: "plugins/b_ok/main.css"}})
	assert.Equal(t, len(snap.MiniApps), 1)
}

func TestLoadAllRejectsDuplicateID(t *testing.T) {
	fsys := fstest.MapFS{
		"a_board/manifest.json": manifest("board", "stub"),
		"a_board/main.js":       {Data: []byte("//")},
		"b_board/manifest.json": manifest("board", "failing"),
		"b_board/main.js":       {Data: []byte("//")},
	}
	reg := ui.NewRegistry()
	r := NewRegistry(nil, nopEval{}, reg, nil)
	r.lookup = func(name string) (Factory, bool) {
		switch name {
		case "stub":
			return func(_ App, s Surface) Plugin { return &stubPlugin{id: s.Manifest.ID} }, true
		case "failing":
			return func(_ App, s Surface) Plugin {
				return &stubPlugin{id: s.Manifest.ID, initErr: errors.New("init")}
			}, true
		}
		return nil, false
	}

	ps, err := r.LoadAll(context.Background(), fsys)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(ps), 1)

	snap := reg.Snapshot()
	assert.Equal(t, snap.Plugins(), []string{"board"})
	assert.Equal(t, snap.Scripts, []ui.Resource{{Plugin: "board", Path: "plugins/a_board/main.js"}})
	assert.Equal(t, len(snap.MiniApps), 1)

	// A second pass sees the id already registered.
	ps, err = r.LoadAll(context.Background(), fstest.MapFS{"c_board/manifest.json": manifest("board", "stub")})
	assert.Equal(t, err, nil)
	assert.Equal(t, len(ps), 0)
	assert.Equal(t, len(reg.Snapshot().MiniApps), 1)
}

func TestLoadAllCarriesExtensionAction(t *testing.T) {
	reg := ui.NewRegistry()
	r := NewRegistry(nil, nopEval{}, reg, nil)
	r.lookup = func(string) (Factory, bool) {
		return func(_ App, s Surface) Plugin { return &stubPlugin{id: s.Manifest.ID} }, true
	}

	_, err := r.LoadAll(context.Background(), ui.Plugins())
	assert.Equal(t, err, nil)

	var sketch *ui.MiniApp
	for _, m := range reg.Snapshot().MiniApps {
		if m.Plugin == "sketch" {
			m := m
			sketch = &m
		}
	}
	if sketch == nil {
		t.Fatalf("sketch mini app not registered")
	}
	assert.Equal(t, sketch.Extension, true)
	assert.Equal(t, sketch.ExtensionText, "Sketch")
	assert.Equal(t, sketch.ExtensionAction, "chat_openSketch")
}

func TestHandleRecoversPanics(t *testing.T) {
	p := &stubPlugin{id: "p", panicOn: "explode"}
	err := Handle(context.Background(), p, []string{"explode"})
	if !errors.Is(err, ErrPluginHandler) {
		t.Fatalf("expected ErrPluginHandler, got %v", err)
	}
	assert.Equal(t, Handle(context.Background(), p, []string{"fine"}), nil)
	assert.Equal(t, p.seen, [][]string{{"fine"}})
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	Register("test-dup", func(App, Surface) Plugin { return nil })
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Register("test-dup", func(App, Surface) Plugin { return nil })
}
