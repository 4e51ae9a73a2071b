// Package kanban implements the shared kanban board mini-app. Board
// operations are published as KAN records on the user's feed; the board
// state is rebuilt by the UI from the in-order event stream.
package kanban

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/bipf"
	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/plugin"
	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

// AppTag is the first element of every kanban record.
const AppTag = "KAN"

// ErrBadRequest is returned for a kanban verb with missing or undecodable arguments.
var ErrBadRequest = errors.New("kanban: bad request")

var base64Re = regexp.MustCompile(`^([A-Za-z0-9+/]{4})*([A-Za-z0-9+/]{3}=|[A-Za-z0-9+/]{2}==)?$`)

func init() { plugin.Register("kanban", New) }

// Plugin is the kanban mini-app.
type Plugin struct {
	app plugin.App
	ui  plugin.Surface
	log logpkg.Logger
}

// New is the plugin.Factory for kanban.
func New(app plugin.App, s plugin.Surface) plugin.Plugin {
	l := s.Logger
	if l == nil {
		l = logpkg.NewNopLogger()
	}
	return &Plugin{app: app, ui: s, log: l}
}

func (p *Plugin) ID() string { return p.ui.Manifest.ID }

// Initialize registers the kanban list and board views.
func (p *Plugin) Initialize() error {
	s := p.ui.Scope
	s.AddToggle("lst:kanban", "div:board")
	s.AddVisibilityGroup("kanban", "div:back", "core", "lst:kanban", "plus")
	s.AddVisibilityGroup("board", "div:back", "core", "div:board")
	for _, m := range []struct{ label, action string }{
		{"New Kanban board", "menu_new_board"},
		{"Invitations", "menu_board_invitations"},
		{"Connected Devices", "menu_connection"},
		{"Settings", "menu_settings"},
		{"About", "menu_about"},
	} {
		s.AddMenuEntry("kanban", m.label, m.action)
	}
	for _, m := range []struct{ label, action string }{
		{"Add list", "menu_new_column"},
		{"Rename Kanban Board", "menu_rename_board"},
		{"Invite Users", "menu_invite"},
		{"History", "menu_history"},
		{"Reload", "reload_curr_board"},
		{"Leave", "leave_curr_board"},
		{"(un)Forget", "board_toggle_forget"},
		{"Debug", "ui_debug"},
	} {
		s.AddMenuEntry("board", m.label, m.action)
	}
	return nil
}

// HandleRequest implements plugin.Plugin.
func (p *Plugin) HandleRequest(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "kanban":
		rec, err := Record(args[1:])
		if err != nil {
			return err
		}
		e, err := p.app.Publish(ctx, rec)
		if err != nil {
			return err
		}
		p.log.Debug("published board operation", logpkg.Str("op", args[3]), logpkg.Uint64("seq", e.Seq))
	case "backPressed":
		p.ui.Eval(ctx, "kanban_back_pressed")
	case "kanban:members_confirmed":
		p.ui.Eval(ctx, "menu_new_board_name")
	case "kanban:plus_button":
		p.ui.Eval(ctx, "menu_new_board")
	case "edit_confirmed":
		p.ui.Eval(ctx, "kanban_edit_confirmed")
	case "b2f_initialize", "b2f_new_event":
		p.ui.Eval(ctx, "load_board_list")
	}
	return nil
}

// Record builds the KAN record for the arguments of a kanban verb:
// bid, prev, op and args, where bid is base64 or "null" and prev and args are
// base64 of a comma separated list of base64 items, or "null".
//
// The result is ["KAN", bid|None, [prev...]|"null", op, arg...]. Each arg that
// is itself valid base64 is carried as bytes, any other as a string.
func Record(args []string) (bipf.Value, error) {
	if len(args) < 4 {
		return bipf.Value{}, fmt.Errorf("%w: want 4 arguments, got %d", ErrBadRequest, len(args))
	}
	items := []bipf.Value{bipf.String(AppTag)}

	if args[0] == "null" {
		items = append(items, bipf.None())
	} else {
		bid, err := base64.StdEncoding.DecodeString(args[0])
		if err != nil {
			return bipf.Value{}, fmt.Errorf("%w: bid: %v", ErrBadRequest, err)
		}
		items = append(items, bipf.Bytes(bid))
	}

	prev, err := decodeList(args[1])
	if err != nil {
		return bipf.Value{}, fmt.Errorf("%w: prev: %v", ErrBadRequest, err)
	}
	if prev == nil {
		// Older readers expect the string, not None.
		items = append(items, bipf.String("null"))
	} else {
		refs := make([]bipf.Value, 0, len(prev))
		for _, p := range prev {
			b, err := base64.StdEncoding.DecodeString(p)
			if err != nil {
				return bipf.Value{}, fmt.Errorf("%w: prev ref: %v", ErrBadRequest, err)
			}
			refs = append(refs, bipf.Bytes(b))
		}
		items = append(items, bipf.List(refs...))
	}

	items = append(items, bipf.String(args[2]))

	opArgs, err := decodeList(args[3])
	if err != nil {
		return bipf.Value{}, fmt.Errorf("%w: args: %v", ErrBadRequest, err)
	}
	for _, a := range opArgs {
		if base64Re.MatchString(a) {
			b, err := base64.StdEncoding.DecodeString(a)
			if err == nil {
				items = append(items, bipf.Bytes(b))
				continue
			}
		}
		items = append(items, bipf.String(a))
	}
	return bipf.List(items...), nil
}

// decodeList decodes base64("b64(a),b64(b),...") into [a, b, ...]. "null" yields nil.
func decodeList(s string) ([]string, error) {
	if s == "null" {
		return nil, nil
	}
	outer, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(string(outer), ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		b, err := base64.StdEncoding.DecodeString(part)
		if err != nil {
			return nil, err
		}
		out = append(out, string(b))
	}
	return out, nil
}
