package runtime

import (
	"context"
	"errors"
	"io/fs"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/bipf"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/command"
	cfgpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/config"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/delivery"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/eventlog"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/feedstore"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/frontier"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/identity"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/plugin"
	_ "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/plugin/kanban"
	_ "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/plugin/sketch"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/settings"
	pebblestore "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/storage/pebble"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/ui"
	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

// OutboxLog is the eventlog name of the UI call queue.
const OutboxLog = "ui"

// Options for building the Runtime.
type Options struct {
	DataDir string
	Fsync   pebblestore.FsyncMode
	Config  cfgpkg.Config
	Logger  logpkg.Logger
	// Bundles holds one directory per plugin. Defaults to the embedded bundles.
	Bundles fs.FS
	// Device defaults to a headless device whose restart reloads the runtime.
	Device command.Device
}

// Runtime wires storage, config, and the bridge components.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config
	logger logpkg.Logger

	feeds    *feedstore.Store
	frontier *frontier.Store
	outbox   *ui.Outbox
	registry *ui.Registry
	settings *settings.Store
	identity *identity.Store
	notifier *delivery.Notifier
	plugins  []plugin.Plugin
	router   *command.Router
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	ctx := context.Background()
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, Fsync: opts.Fsync})
	if err != nil {
		return nil, err
	}
	rt := &Runtime{db: db, config: opts.Config, logger: logger.With(logpkg.Component("runtime"))}
	if err := rt.wire(ctx, opts, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return rt, nil
}

func (r *Runtime) wire(ctx context.Context, opts Options, logger logpkg.Logger) error {
	r.feeds = feedstore.Open(r.db, feedstore.Options{ChunkSize: r.config.Feeds.ChunkSize})
	r.frontier = frontier.New(r.db)
	outboxLog, err := eventlog.OpenLog(r.db, OutboxLog)
	if err != nil {
		return err
	}
	r.outbox = ui.NewOutbox(outboxLog, logger)
	r.registry = ui.NewRegistry()
	r.settings = settings.New(r.db, r.config.Settings)
	if r.identity, err = identity.Open(ctx, r.db); err != nil {
		return err
	}
	if err := r.feeds.Follow(ctx, r.identity.FeedID()); err != nil {
		return err
	}

	r.notifier = delivery.New(r.feeds, r.frontier, r.outbox, logger)
	r.feeds.OnArrival(r.notifier.OnArrival)

	bundles := opts.Bundles
	if bundles == nil {
		bundles = ui.Plugins()
	}
	if r.plugins, err = plugin.NewRegistry(r, r.outbox, r.registry, logger).LoadAll(ctx, bundles); err != nil {
		return err
	}

	device := opts.Device
	if device == nil {
		device = command.HeadlessDevice{Logger: logger, OnRestart: r.reload}
	}
	r.router = command.NewRouter(command.Deps{
		Identity:   r.identity,
		Settings:   r.settings,
		Feeds:      r.feeds,
		Frontier:   r.frontier,
		Restreamer: r.notifier,
		Publisher:  r,
		Device:     device,
		Registry:   r.registry,
		Bundles:    bundles,
	}, r.outbox, r.plugins, logger)
	return nil
}

// reload re-follows the current identity after the store was reset and
// replays what is left to the UI.
func (r *Runtime) reload(ctx context.Context) error {
	if err := r.feeds.Follow(ctx, r.identity.FeedID()); err != nil {
		return err
	}
	r.logger.Info("reloaded", logpkg.Str("identity", r.identity.Ref()))
	r.outbox.Eval(ctx, command.FuncInitialize, r.identity.Ref())
	return r.notifier.Restream(ctx)
}

// Publish encodes rec and appends it to the local user's feed. It implements plugin.App.
func (r *Runtime) Publish(ctx context.Context, rec bipf.Value) (feedstore.Entry, error) {
	content, err := bipf.Encode(rec)
	if err != nil {
		return feedstore.Entry{}, err
	}
	return r.feeds.Publish(ctx, r.identity.FeedID(), content)
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// TrimOutbox applies the configured outbox byte budget.
func (r *Runtime) TrimOutbox(ctx context.Context) (int, error) {
	if r.config.Outbox.MaxBytes <= 0 {
		return 0, nil
	}
	return r.outbox.TrimToMaxBytes(ctx, r.config.Outbox.MaxBytes)
}

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

func (r *Runtime) Router() *command.Router      { return r.router }
func (r *Runtime) Outbox() *ui.Outbox           { return r.outbox }
func (r *Runtime) Registry() *ui.Registry       { return r.registry }
func (r *Runtime) Feeds() *feedstore.Store      { return r.feeds }
func (r *Runtime) Frontier() *frontier.Store    { return r.frontier }
func (r *Runtime) Notifier() *delivery.Notifier { return r.notifier }
func (r *Runtime) Identity() *identity.Store    { return r.identity }
func (r *Runtime) Settings() *settings.Store    { return r.settings }
func (r *Runtime) Plugins() []plugin.Plugin     { return append([]plugin.Plugin(nil), r.plugins...) }
