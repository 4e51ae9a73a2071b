// Package sketch implements the sketch mini-app, a chat extension for
// sending drawings.
package sketch

import (
	"context"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/plugin"
)

func init() { plugin.Register("sketch", New) }

// Plugin is the sketch mini-app.
type Plugin struct {
	ui plugin.Surface
}

// New is the plugin.Factory for sketch.
func New(_ plugin.App, s plugin.Surface) plugin.Plugin { return &Plugin{ui: s} }

func (p *Plugin) ID() string { return p.ui.Manifest.ID }

func (p *Plugin) Initialize() error {
	p.ui.AddVisibilityGroup("sketch", "div:back", "core", "lst:chats", "plus")
	return nil
}

func (p *Plugin) HandleRequest(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "backPressed":
		p.ui.Eval(ctx, "sketch_back_pressed")
	case "load_chat_extension":
		p.ui.Eval(ctx, "sketch_load_chat_extension")
	case "sketch:plus_button":
		p.ui.Eval(ctx, "launch_snackbar", "This feature is currently deactivated")
	}
	return nil
}
