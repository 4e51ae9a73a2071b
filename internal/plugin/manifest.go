package plugin

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ManifestFile is the file name looked up in each bundle directory.
const ManifestFile = "manifest.json"

// Resources lists asset files relative to the bundle directory.
type Resources struct {
	Styles  []string `json:"styles"`
	Scripts []string `json:"scripts"`
	Markup  []string `json:"markup"`
}

// Manifest describes one mini-app bundle.
type Manifest struct {
	ID          string `json:"id"`
	Icon        string `json:"icon"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Implementation selects the registered Factory.
	Implementation          string    `json:"implementation"`
	Extension               Flag      `json:"extension"`
	ExtensionText           string    `json:"extensionText"`
	ExtensionImplementation string    `json:"extensionImplementation"`
	Resources               Resources `json:"resources"`
}

// Flag is a boolean that also accepts the strings "True"/"False".
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(t)
	case string:
		*f = Flag(strings.EqualFold(t, "true"))
	default:
		return fmt.Errorf("plugin: extension flag of type %T", v)
	}
	return nil
}

// ParseManifest decodes and validates a manifest. A manifest without an
// implementation key falls back to the last dotted segment of its legacy
// pluginClass, lower-cased with a trailing "Plugin" removed.
func ParseManifest(b []byte) (Manifest, error) {
	var raw struct {
		Manifest
		PluginClass string `json:"pluginClass"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return Manifest{}, err
	}
	m := raw.Manifest
	if m.Implementation == "" && raw.PluginClass != "" {
		cls := raw.PluginClass[strings.LastIndex(raw.PluginClass, ".")+1:]
		m.Implementation = strings.ToLower(strings.TrimSuffix(cls, "Plugin"))
	}
	if m.ID == "" {
		return Manifest{}, fmt.Errorf("missing id")
	}
	if m.Implementation == "" {
		return Manifest{}, fmt.Errorf("%s: missing implementation", m.ID)
	}
	return m, nil
}
