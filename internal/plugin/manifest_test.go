package plugin

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`{
		"id": "sketch",
		"name": "Sketch",
		"pluginClass": "nz.example.miniapps.SketchPlugin",
		"extension": "True",
		"extensionText": "Sketch",
		"resources": {"scripts": ["a.js"]}
	}`))
	assert.Equal(t, err, nil)
	assert.Equal(t, m.Implementation, "sketch")
	assert.Equal(t, bool(m.Extension), true)
	assert.Equal(t, m.Resources.Scripts, []string{"a.js"})

	m, err = ParseManifest([]byte(`{"id":"board","implementation":"kanban","extension":false}`))
	assert.Equal(t, err, nil)
	assert.Equal(t, m.Implementation, "kanban")
	assert.Equal(t, bool(m.Extension), false)
}

func TestParseManifestErrors(t *testing.T) {
	for _, doc := range []string{
		`{`,
		`{"implementation":"kanban"}`,
		`{"id":"x"}`,
		`{"id":"x","implementation":"y","extension":3}`,
	} {
		if _, err := ParseManifest([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", doc)
		}
	}
}
