package command

import (
	"context"

	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

// Device performs the host-side actions that need hardware or a native UI.
type Device interface {
	PickMedia(ctx context.Context) error
	RecordVoice(ctx context.Context) error
	PlayVoice(ctx context.Context, voice []byte, from, date string) error
	ScanQR(ctx context.Context) error
	BackPressed(ctx context.Context) error
	// Beacon announces the node to neighbours.
	Beacon(ctx context.Context)
	// Restart asks the host to restart the bridge after an identity change.
	Restart(ctx context.Context) error
}

// HeadlessDevice logs device requests it cannot serve.
type HeadlessDevice struct {
	Logger logpkg.Logger
	// OnRestart, if set, runs on Restart.
	OnRestart func(ctx context.Context) error
}

func (d HeadlessDevice) log() logpkg.Logger {
	if d.Logger == nil {
		return logpkg.NewNopLogger()
	}
	return d.Logger.With(logpkg.Component("device"))
}

func (d HeadlessDevice) PickMedia(context.Context) error {
	d.log().Info("media picker not available")
	return nil
}

func (d HeadlessDevice) RecordVoice(context.Context) error {
	d.log().Info("voice recorder not available")
	return nil
}

func (d HeadlessDevice) PlayVoice(_ context.Context, voice []byte, from, date string) error {
	d.log().Info("voice playback not available", logpkg.Int("bytes", len(voice)), logpkg.Str("from", from), logpkg.Str("date", date))
	return nil
}

func (d HeadlessDevice) ScanQR(context.Context) error {
	d.log().Info("qr scanner not available")
	return nil
}

func (d HeadlessDevice) BackPressed(context.Context) error {
	d.log().Debug("back pressed")
	return nil
}

func (d HeadlessDevice) Beacon(context.Context) { d.log().Debug("beacon") }

func (d HeadlessDevice) Restart(ctx context.Context) error {
	d.log().Info("restart requested")
	if d.OnRestart != nil {
		return d.OnRestart(ctx)
	}
	return nil
}
