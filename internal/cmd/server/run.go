package serverrun

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/config"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/runtime"
	grpcserver "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/server/grpc"
	httpserver "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/server/http"
	pebblestore "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/storage/pebble"
	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

type Options struct {
	DataDir  string
	GRPCAddr string
	HTTPAddr string
	// PluginsDir overrides the embedded mini-app bundles.
	PluginsDir string
	Fsync      pebblestore.FsyncMode
	Config     cfgpkg.Config
	// Logger overrides the logger built from Config.Log.
	Logger logpkg.Logger
}

// Run opens the runtime, starts the gRPC and HTTP servers and the outbox
// trimmer, and blocks until ctx is cancelled or a termination signal arrives.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}

	procLogger := opts.Logger
	if procLogger == nil {
		l, err := logpkg.ApplyConfig(&opts.Config.Log)
		if err != nil {
			// Fallback to a sane default
			l = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel), logpkg.WithFormatter(&logpkg.TextFormatter{}))
		}
		procLogger = l
	}
	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(procLogger)

	rt, err := runtime.Open(runtime.Options{
		DataDir: filepath.Join(opts.DataDir, "store"),
		Fsync:   opts.Fsync,
		Config:  opts.Config,
		Logger:  procLogger,
		Bundles: bundles(opts.PluginsDir),
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	procLogger.Info("Starting tinySSB bridge",
		logpkg.Str("grpc", opts.GRPCAddr),
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("identity", rt.Identity().Ref()),
		logpkg.Int("plugins", len(rt.Plugins())),
	)

	gsrv := grpcserver.New(rt, procLogger)
	hsrv := httpserver.New(rt, procLogger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gsrv.ListenAndServe(sctx, opts.GRPCAddr); err != nil && sctx.Err() == nil {
			procLogger.Error("grpc server failed", logpkg.Err(err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			procLogger.Error("http server failed", logpkg.Err(err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		trimLoop(sctx, rt, time.Duration(opts.Config.Outbox.TrimIntervalSec)*time.Second, procLogger)
	}()

	<-sctx.Done()
	// Stop the servers before the runtime closes the DB.
	gsrv.Close()
	hsrv.Close()
	wg.Wait()
	return nil
}

func bundles(dir string) fs.FS {
	if dir == "" {
		return nil
	}
	return os.DirFS(dir)
}

// trimLoop applies the outbox byte budget every interval until ctx is done.
func trimLoop(ctx context.Context, rt *runtime.Runtime, every time.Duration, logger logpkg.Logger) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := rt.TrimOutbox(ctx)
			if err != nil {
				logger.Warn("outbox trim failed", logpkg.Err(err))
				continue
			}
			if n > 0 {
				logger.Debug("outbox trimmed", logpkg.Int("calls", n))
			}
		}
	}
}
