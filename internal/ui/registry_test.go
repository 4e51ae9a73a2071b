package ui

import (
	"io/fs"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestRegistryAppendsWithProvenance(t *testing.T) {
	r := NewRegistry()
	board := r.Scope("board")
	sketch := r.Scope("sketch")

	board.AddScript("plugins/board/board.js")
	sketch.AddScript("plugins/sketch/sketch.js")
	board.AddVisibilityGroup("kanban", "div:back", "lst:kanban")
	sketch.AddVisibilityGroup("kanban", "plus")
	board.AddMenuEntry("kanban", "New Kanban board", "menu_new_board")
	board.AddToggle("lst:kanban", "div:board")
	sketch.AddMiniApp(MiniApp{Plugin: "spoofed", Name: "Sketch"})

	s := r.Snapshot()
	assert.Equal(t, len(s.Scripts), 2)
	assert.Equal(t, s.Scripts[0], Resource{Plugin: "board", Path: "plugins/board/board.js"})
	assert.Equal(t, s.Modes()["kanban"], []string{"div:back", "lst:kanban", "plus"})
	assert.Equal(t, s.MiniApps[0].Plugin, "sketch")
	assert.Equal(t, s.Plugins(), []string{"board", "sketch"})
	assert.Equal(t, len(s.Toggles), 2)

	r.RemovePlugin("board")
	s2 := r.Snapshot()
	assert.Equal(t, len(s2.Scripts), 1)
	assert.Equal(t, s2.Modes()["kanban"], []string{"plus"})
	assert.Equal(t, len(s2.Menus), 0)

	// earlier snapshots are unaffected
	assert.Equal(t, len(s.Menus), 1)
}

func TestEmbeddedPluginBundles(t *testing.T) {
	for _, p := range []string{"board/manifest.json", "board/board.js", "sketch/manifest.json"} {
		if _, err := fs.Stat(Plugins(), p); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}
}
