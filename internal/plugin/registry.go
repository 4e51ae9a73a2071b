package plugin

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/ui"
	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

// AssetPrefix is the URL path under which bundle directories are served.
const AssetPrefix = "plugins"

// Registry loads bundles against one UI registry.
type Registry struct {
	app    App
	ui     ui.Evaluator
	reg    *ui.Registry
	logger logpkg.Logger
	lookup func(string) (Factory, bool)
}

// NewRegistry returns a loader that builds plugins with app and ev and
// records their registrations in reg.
func NewRegistry(app App, ev ui.Evaluator, reg *ui.Registry, logger logpkg.Logger) *Registry {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	return &Registry{app: app, ui: ev, reg: reg, logger: logger.With(logpkg.Component("plugin")), lookup: Lookup}
}

// LoadAll loads every bundle directory of fsys in name order. Bundles that
// fail to parse, reuse a registered id, name an unknown implementation or fail
// Initialize are logged and skipped. The returned plugins are initialized.
func (r *Registry) LoadAll(ctx context.Context, fsys fs.FS) ([]Plugin, error) {
	dirs, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPluginLoad, err)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name() < dirs[j].Name() })

	ids := map[string]bool{}
	for _, id := range r.reg.Snapshot().Plugins() {
		ids[id] = true
	}
	var out []Plugin
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if !d.IsDir() {
			continue
		}
		p, err := r.load(fsys, d.Name(), ids)
		if err != nil {
			r.logger.Warn("skipping plugin", logpkg.Str("dir", d.Name()), logpkg.Err(err))
			continue
		}
		out = append(out, p)
	}
	r.logger.Info("plugins loaded", logpkg.Int("count", len(out)))
	return out, nil
}

// load builds one bundle. ids holds the plugin ids already registered; a
// bundle reusing one is rejected before it registers anything.
func (r *Registry) load(fsys fs.FS, dir string, ids map[string]bool) (Plugin, error) {
	b, err := fs.ReadFile(fsys, path.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPluginLoad, err)
	}
	m, err := ParseManifest(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPluginLoad, dir, err)
	}
	if ids[m.ID] {
		return nil, fmt.Errorf("%w: %s: duplicate plugin id %q", ErrPluginLoad, dir, m.ID)
	}
	factory, ok := r.lookup(m.Implementation)
	if !ok {
		return nil, fmt.Errorf("%w: %s: unknown implementation %q", ErrPluginLoad, m.ID, m.Implementation)
	}

	scope := r.reg.Scope(m.ID)
	base := path.Join(AssetPrefix, dir)
	for _, f := range m.Resources.Styles {
		scope.AddStyle(path.Join(base, f))
	}
	for _, f := range m.Resources.Scripts {
		scope.AddScript(path.Join(base, f))
	}
	for _, f := range m.Resources.Markup {
		scope.AddMarkup(path.Join(base, f))
	}
	scope.AddMiniApp(ui.MiniApp{
		Name:            m.Name,
		Icon:            m.Icon,
		Description:     m.Description,
		Extension:       bool(m.Extension),
		ExtensionText:   m.ExtensionText,
		ExtensionAction: m.ExtensionImplementation,
	})

	p, err := build(factory, r.app, Surface{
		Evaluator: r.ui,
		Scope:     scope,
		Manifest:  m,
		Logger:    r.logger.With(logpkg.Str("plugin", m.ID)),
	})
	if err == nil {
		err = initialize(p)
	}
	if err != nil {
		r.reg.RemovePlugin(m.ID)
		return nil, fmt.Errorf("%w: %s: %v", ErrPluginLoad, m.ID, err)
	}
	ids[m.ID] = true
	return p, nil
}

func build(f Factory, app App, s Surface) (p Plugin, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("factory panic: %v", rec)
		}
	}()
	p = f(app, s)
	if p == nil {
		return nil, fmt.Errorf("factory returned nil")
	}
	return p, nil
}

func initialize(p Plugin) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("initialize panic: %v", rec)
		}
	}()
	return p.Initialize()
}

// Handle offers args to p, converting a panic into ErrPluginHandler.
func Handle(ctx context.Context, p Plugin, args []string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: panic: %v", ErrPluginHandler, p.ID(), rec)
		}
	}()
	if err := p.HandleRequest(ctx, args); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPluginHandler, p.ID(), err)
	}
	return nil
}
