package ui

import (
	"sort"
	"sync"
)

// Resource is an asset path contributed by a plugin.
type Resource struct {
	Plugin string `json:"plugin"`
	Path   string `json:"path"`
}

// Toggle is an element whose visibility the UI switches per mode.
type Toggle struct {
	Plugin  string `json:"plugin"`
	Element string `json:"element"`
}

// VisibilityGroup lists the elements shown in a UI mode.
type VisibilityGroup struct {
	Plugin   string   `json:"plugin"`
	Mode     string   `json:"mode"`
	Elements []string `json:"elements"`
}

// MenuEntry is a labelled action in a mode's menu.
type MenuEntry struct {
	Plugin string `json:"plugin"`
	Mode   string `json:"mode"`
	Label  string `json:"label"`
	Action string `json:"action"`
}

// MiniApp describes a plugin in the app list.
type MiniApp struct {
	Plugin        string `json:"plugin"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	Description   string `json:"description"`
	Extension     bool   `json:"extension"`
	ExtensionText string `json:"extensionText,omitempty"`

	// ExtensionAction is the UI function behind the chat extension button.
	ExtensionAction string `json:"extensionAction,omitempty"`
}

// Snapshot is a point-in-time copy of the registry, in registration order.
type Snapshot struct {
	Styles   []Resource        `json:"styles"`
	Scripts  []Resource        `json:"scripts"`
	Markup   []Resource        `json:"markup"`
	Toggles  []Toggle          `json:"toggles"`
	Groups   []VisibilityGroup `json:"groups"`
	Menus    []MenuEntry       `json:"menus"`
	MiniApps []MiniApp         `json:"miniApps"`
}

// Modes merges visibility groups by mode. Elements keep registration order.
func (s Snapshot) Modes() map[string][]string {
	out := map[string][]string{}
	for _, g := range s.Groups {
		out[g.Mode] = append(out[g.Mode], g.Elements...)
	}
	return out
}

// Plugins returns the distinct plugin ids that registered anything, sorted.
func (s Snapshot) Plugins() []string {
	seen := map[string]struct{}{}
	add := func(id string) { seen[id] = struct{}{} }
	for _, r := range s.Styles {
		add(r.Plugin)
	}
	for _, r := range s.Scripts {
		add(r.Plugin)
	}
	for _, r := range s.Markup {
		add(r.Plugin)
	}
	for _, t := range s.Toggles {
		add(t.Plugin)
	}
	for _, g := range s.Groups {
		add(g.Plugin)
	}
	for _, m := range s.Menus {
		add(m.Plugin)
	}
	for _, a := range s.MiniApps {
		add(a.Plugin)
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Registry is the single owner of plugin UI contributions. Every operation
// appends; nothing a plugin registers can replace another plugin's entries.
type Registry struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Scope returns the registration handle for one plugin.
func (r *Registry) Scope(plugin string) *Scope { return &Scope{reg: r, plugin: plugin} }

// RemovePlugin drops everything plugin registered.
func (r *Registry) RemovePlugin(plugin string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &r.snap
	s.Styles = dropResources(s.Styles, plugin)
	s.Scripts = dropResources(s.Scripts, plugin)
	s.Markup = dropResources(s.Markup, plugin)
	s.Toggles = dropWhere(s.Toggles, func(t Toggle) bool { return t.Plugin == plugin })
	s.Groups = dropWhere(s.Groups, func(g VisibilityGroup) bool { return g.Plugin == plugin })
	s.Menus = dropWhere(s.Menus, func(m MenuEntry) bool { return m.Plugin == plugin })
	s.MiniApps = dropWhere(s.MiniApps, func(a MiniApp) bool { return a.Plugin == plugin })
}

// Snapshot copies the current state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.snap
	out := Snapshot{
		Styles:   append([]Resource{}, s.Styles...),
		Scripts:  append([]Resource{}, s.Scripts...),
		Markup:   append([]Resource{}, s.Markup...),
		Toggles:  append([]Toggle{}, s.Toggles...),
		Menus:    append([]MenuEntry{}, s.Menus...),
		MiniApps: append([]MiniApp{}, s.MiniApps...),
		Groups:   make([]VisibilityGroup, len(s.Groups)),
	}
	for i, g := range s.Groups {
		g.Elements = append([]string(nil), g.Elements...)
		out.Groups[i] = g
	}
	return out
}

func dropResources(rs []Resource, plugin string) []Resource {
	return dropWhere(rs, func(r Resource) bool { return r.Plugin == plugin })
}

func dropWhere[T any](xs []T, drop func(T) bool) []T {
	out := xs[:0]
	for _, x := range xs {
		if !drop(x) {
			out = append(out, x)
		}
	}
	return out
}

// Scope appends registrations on behalf of one plugin.
type Scope struct {
	reg    *Registry
	plugin string
}

// Plugin returns the id the scope registers for.
func (s *Scope) Plugin() string { return s.plugin }

func (s *Scope) with(fn func(*Snapshot)) {
	s.reg.mu.Lock()
	fn(&s.reg.snap)
	s.reg.mu.Unlock()
}

func (s *Scope) AddStyle(path string) {
	s.with(func(sn *Snapshot) { sn.Styles = append(sn.Styles, Resource{s.plugin, path}) })
}

func (s *Scope) AddScript(path string) {
	s.with(func(sn *Snapshot) { sn.Scripts = append(sn.Scripts, Resource{s.plugin, path}) })
}

func (s *Scope) AddMarkup(path string) {
	s.with(func(sn *Snapshot) { sn.Markup = append(sn.Markup, Resource{s.plugin, path}) })
}

// AddToggle registers elements whose visibility follows the current mode.
func (s *Scope) AddToggle(elements ...string) {
	s.with(func(sn *Snapshot) {
		for _, e := range elements {
			sn.Toggles = append(sn.Toggles, Toggle{s.plugin, e})
		}
	})
}

// AddVisibilityGroup registers the elements visible in mode.
func (s *Scope) AddVisibilityGroup(mode string, elements ...string) {
	s.with(func(sn *Snapshot) {
		sn.Groups = append(sn.Groups, VisibilityGroup{s.plugin, mode, append([]string(nil), elements...)})
	})
}

// AddMenuEntry appends a menu action for mode.
func (s *Scope) AddMenuEntry(mode, label, action string) {
	s.with(func(sn *Snapshot) { sn.Menus = append(sn.Menus, MenuEntry{s.plugin, mode, label, action}) })
}

// AddMiniApp lists the plugin in the app overview. Plugin is forced to the scope's id.
func (s *Scope) AddMiniApp(app MiniApp) {
	app.Plugin = s.plugin
	s.with(func(sn *Snapshot) { sn.MiniApps = append(sn.MiniApps, app) })
}
