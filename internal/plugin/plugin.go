package plugin

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/bipf"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/feedstore"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/ui"
	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

var (
	// ErrPluginLoad marks a bundle that could not be loaded or initialized.
	ErrPluginLoad = errors.New("plugin: load failed")
	// ErrPluginHandler marks a failure inside a plugin's request handler.
	ErrPluginHandler = errors.New("plugin: handler failed")
)

// Plugin handles command lines offered by the router.
type Plugin interface {
	ID() string
	// Initialize registers UI resources. It is called once before any request.
	Initialize() error
	// HandleRequest sees every command line; plugins ignore verbs they do not own.
	HandleRequest(ctx context.Context, args []string) error
}

// App is the host capability set plugins may use.
type App interface {
	// Publish appends a record to the local user's feed.
	Publish(ctx context.Context, record bipf.Value) (feedstore.Entry, error)
}

// Surface is a plugin's view of the UI: the outbound call channel plus a
// registry scope carrying the plugin's id.
type Surface struct {
	ui.Evaluator
	*ui.Scope
	Manifest Manifest
	Logger   logpkg.Logger
}

// Factory builds a plugin for a manifest.
type Factory func(app App, s Surface) Plugin

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// Register adds a factory under implementation name. It panics on duplicates.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, dup := factories[name]; dup {
		panic("plugin: duplicate factory " + name)
	}
	factories[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// Factories lists the registered implementation names, sorted.
func Factories() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
