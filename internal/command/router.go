package command

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync/atomic"
	"time"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/bipf"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/feedstore"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/plugin"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/ui"
	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

var (
	// ErrUnknownCommand marks a verb no built-in handler owns.
	ErrUnknownCommand = errors.New("command: unknown verb")
	// ErrBadArgs marks missing or undecodable arguments to a built-in verb.
	ErrBadArgs = errors.New("command: bad arguments")
)

// UI call names sent by built-in handlers.
const (
	FuncInitialize    = "initialize"
	FuncUIRegistry    = "ui_registry"
	FuncShowSecret    = "show_secret"
	FuncGetSettings   = "get_settings"
	FuncNewVoice      = "new_voice"
	FuncImportFailed  = "import_failed"
	FuncManifestPaths = "handleManifestPaths"
	FuncManifestData  = "handleManifestContent"
)

// Identity is the local key pair.
type Identity interface {
	FeedID() feedstore.FeedID
	Ref() string
	Renew(ctx context.Context) error
	Import(ctx context.Context, secret []byte) error
	ExportString() (string, error)
}

// Settings is the user settings store.
type Settings interface {
	Snapshot() (map[string]any, error)
	Set(ctx context.Context, key, value string) error
	ResetToDefault(ctx context.Context) error
}

// Feeds is the local log store.
type Feeds interface {
	ListFeeds() ([]feedstore.FeedID, error)
	Follow(ctx context.Context, fid feedstore.FeedID) error
	DeleteFeed(ctx context.Context, fid feedstore.FeedID) error
	Reset(ctx context.Context) error
}

// Frontier drops delivery cursors of removed feeds.
type Frontier interface {
	Reset(ctx context.Context, fid feedstore.FeedID) error
	ResetAll(ctx context.Context) error
}

// Restreamer replays stored entries to the UI.
type Restreamer interface {
	Restream(ctx context.Context) error
}

// Deps are the router's collaborators. Bundles and Registry may be nil.
type Deps struct {
	Identity   Identity
	Settings   Settings
	Feeds      Feeds
	Frontier   Frontier
	Restreamer Restreamer
	Publisher  plugin.App
	Device     Device
	Registry   *ui.Registry
	Bundles    fs.FS
}

type handler func(ctx context.Context, args []string) error

// Router dispatches command lines.
type Router struct {
	deps     Deps
	ui       ui.Evaluator
	plugins  []plugin.Plugin
	builtins map[string]handler
	logger   logpkg.Logger
	ready    atomic.Bool
	now      func() time.Time
}

// NewRouter builds a Router. plugins must already be initialized.
func NewRouter(deps Deps, ev ui.Evaluator, plugins []plugin.Plugin, logger logpkg.Logger) *Router {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	if deps.Device == nil {
		deps.Device = HeadlessDevice{Logger: logger}
	}
	r := &Router{
		deps:    deps,
		ui:      ev,
		plugins: append([]plugin.Plugin(nil), plugins...),
		logger:  logger.With(logpkg.Component("command")),
		now:     time.Now,
	}
	r.builtins = map[string]handler{
		"ready":              r.handleReady,
		"reset":              r.handleReset,
		"restream":           r.handleRestream,
		"wipe":               r.handleWipe,
		"wipe:others":        r.handleWipeOthers,
		"importSecret":       r.handleImportSecret,
		"exportSecret":       r.handleExportSecret,
		"add:contact":        r.handleAddContact,
		"publ:post":          r.handlePublicPost,
		"priv:post":          r.handlePrivatePost,
		"get:media":          func(ctx context.Context, _ []string) error { return r.deps.Device.PickMedia(ctx) },
		"get:voice":          func(ctx context.Context, _ []string) error { return r.deps.Device.RecordVoice(ctx) },
		"play:voice":         r.handlePlayVoice,
		"qrscan.init":        func(ctx context.Context, _ []string) error { return r.deps.Device.ScanQR(ctx) },
		"onBackPressed":      func(ctx context.Context, _ []string) error { return r.deps.Device.BackPressed(ctx) },
		"iam":                r.handleIAm,
		"settings:get":       r.handleSettingsGet,
		"settings:set":       r.handleSettingsSet,
		"writeManifestPaths": r.handleManifestPaths,
		"getManifestData":    r.handleManifestData,
	}
	return r
}

// Plugins returns the plugins offered every line, in load order.
func (r *Router) Plugins() []plugin.Plugin { return append([]plugin.Plugin(nil), r.plugins...) }

// Ready reports whether the frontend has sent "ready".
func (r *Router) Ready() bool { return r.ready.Load() }

// Dispatch runs one command line. Plugins see it first; a failing plugin is
// logged and does not stop the others or the built-in handler.
func (r *Router) Dispatch(ctx context.Context, line string) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}
	for _, p := range r.plugins {
		if err := plugin.Handle(ctx, p, args); err != nil {
			r.logger.Warn("plugin failed", logpkg.Str("verb", args[0]), logpkg.Err(err))
		}
	}
	if err := r.builtin(ctx, args); err != nil {
		if errors.Is(err, ErrUnknownCommand) {
			r.logger.Debug("unhandled verb", logpkg.Str("verb", args[0]))
			return
		}
		r.logger.Warn("command failed", logpkg.Str("verb", args[0]), logpkg.Err(err))
	}
}

func (r *Router) builtin(ctx context.Context, args []string) error {
	h, ok := r.builtins[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return h(ctx, args)
}

// ReturnVoice hands a recorded voice clip back to the UI.
func (r *Router) ReturnVoice(ctx context.Context, voice []byte) {
	r.ui.Eval(ctx, FuncNewVoice, b64(voice))
}

func (r *Router) handleReady(ctx context.Context, _ []string) error {
	settings, err := r.deps.Settings.Snapshot()
	if err != nil {
		return err
	}
	r.ui.Eval(ctx, FuncInitialize, r.deps.Identity.Ref(), settings)
	if r.deps.Registry != nil {
		r.ui.Eval(ctx, FuncUIRegistry, r.deps.Registry.Snapshot())
	}
	r.ready.Store(true)
	r.deps.Device.Beacon(ctx)
	return nil
}

func (r *Router) handleReset(ctx context.Context, _ []string) error {
	r.ui.Eval(ctx, FuncInitialize, r.deps.Identity.Ref())
	return r.deps.Restreamer.Restream(ctx)
}

func (r *Router) handleRestream(ctx context.Context, _ []string) error {
	return r.deps.Restreamer.Restream(ctx)
}

func (r *Router) handleWipe(ctx context.Context, _ []string) error {
	if err := r.deps.Settings.ResetToDefault(ctx); err != nil {
		return err
	}
	if err := r.deps.Identity.Renew(ctx); err != nil {
		return err
	}
	if err := r.resetStore(ctx); err != nil {
		return err
	}
	return r.deps.Device.Restart(ctx)
}

func (r *Router) resetStore(ctx context.Context) error {
	if err := r.deps.Feeds.Reset(ctx); err != nil {
		return err
	}
	return r.deps.Frontier.ResetAll(ctx)
}

func (r *Router) handleWipeOthers(ctx context.Context, _ []string) error {
	feeds, err := r.deps.Feeds.ListFeeds()
	if err != nil {
		return err
	}
	own := r.deps.Identity.FeedID()
	removed := 0
	for _, fid := range feeds {
		if fid == own {
			continue
		}
		if err := r.deps.Feeds.DeleteFeed(ctx, fid); err != nil {
			return err
		}
		if err := r.deps.Frontier.Reset(ctx, fid); err != nil {
			return err
		}
		removed++
	}
	r.logger.Info("wiped other feeds", logpkg.Int("removed", removed))
	return nil
}

func (r *Router) handleImportSecret(ctx context.Context, args []string) error {
	err := r.importSecret(ctx, args)
	if err != nil {
		r.ui.Eval(ctx, FuncImportFailed, err.Error())
		return err
	}
	if err := r.resetStore(ctx); err != nil {
		return err
	}
	r.ui.Eval(ctx, FuncInitialize, r.deps.Identity.Ref())
	return r.deps.Device.Restart(ctx)
}

func (r *Router) importSecret(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: importSecret needs a secret", ErrBadArgs)
	}
	secret, err := unb64(args[1])
	if err != nil {
		return err
	}
	return r.deps.Identity.Import(ctx, secret)
}

func (r *Router) handleExportSecret(ctx context.Context, _ []string) error {
	s, err := r.deps.Identity.ExportString()
	if err != nil {
		return err
	}
	r.ui.Eval(ctx, FuncShowSecret, s)
	return nil
}

func (r *Router) handleAddContact(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: add:contact needs an id", ErrBadArgs)
	}
	fid, err := feedstore.ParseFeedID(args[1])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	return r.deps.Feeds.Follow(ctx, fid)
}

func (r *Router) handlePlayVoice(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: play:voice needs a clip", ErrBadArgs)
	}
	voice, err := unb64(args[1])
	if err != nil {
		return err
	}
	var from, date string
	if len(args) > 2 {
		if from, err = unb64String(args[2]); err != nil {
			return err
		}
	}
	if len(args) > 3 {
		if date, err = unb64String(args[3]); err != nil {
			return err
		}
	}
	return r.deps.Device.PlayVoice(ctx, voice, from, date)
}

func (r *Router) handleSettingsGet(ctx context.Context, _ []string) error {
	s, err := r.deps.Settings.Snapshot()
	if err != nil {
		return err
	}
	r.ui.Eval(ctx, FuncGetSettings, s)
	return nil
}

func (r *Router) handleSettingsSet(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: settings:set needs key and value", ErrBadArgs)
	}
	return r.deps.Settings.Set(ctx, args[1], args[2])
}

func (r *Router) handleManifestPaths(ctx context.Context, _ []string) error {
	if r.deps.Bundles == nil {
		return nil
	}
	paths, err := fs.Glob(r.deps.Bundles, "*/"+plugin.ManifestFile)
	if err != nil {
		return err
	}
	for i, p := range paths {
		paths[i] = plugin.AssetPrefix + "/" + p
	}
	r.ui.Eval(ctx, FuncManifestPaths, paths)
	return nil
}

func (r *Router) handleManifestData(ctx context.Context, args []string) error {
	if len(args) < 2 || r.deps.Bundles == nil {
		return nil
	}
	name := strings.TrimPrefix(args[1], plugin.AssetPrefix+"/")
	b, err := fs.ReadFile(r.deps.Bundles, name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	r.ui.Eval(ctx, FuncManifestData, string(b))
	return nil
}

func (r *Router) publish(ctx context.Context, rec bipf.Value) error {
	e, err := r.deps.Publisher.Publish(ctx, rec)
	if err != nil {
		return err
	}
	tag, _ := bipf.AppTag(rec)
	r.logger.Debug("published", logpkg.Str("app", tag), logpkg.Uint64("seq", e.Seq))
	return nil
}
