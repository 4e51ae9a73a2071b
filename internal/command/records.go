package command

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/bipf"
)

// App tags of records published by built-in verbs.
const (
	TagTextAndVoice = "TAV"
	TagIAm          = "IAM"
)

func b64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func unb64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	return b, nil
}

func unb64String(s string) (string, error) {
	b, err := unb64(s)
	return string(b), err
}

// optional decodes a base64 argument where "null" means absent.
func optional(args []string, i int) ([]byte, bool, error) {
	if len(args) <= i || args[i] == "null" {
		return nil, false, nil
	}
	b, err := unb64(args[i])
	return b, err == nil, err
}

// post is a parsed publ:post or priv:post line:
// verb jsonTips b64text|null b64voice|null [recipient...].
type post struct {
	tips       []json.RawMessage
	text       *string
	voice      []byte
	recipients []string
}

func parsePost(args []string, private bool) (post, error) {
	var p post
	if len(args) < 3 {
		return p, fmt.Errorf("%w: %s needs tips and text", ErrBadArgs, args[0])
	}
	if err := json.Unmarshal([]byte(args[1]), &p.tips); err != nil {
		return p, fmt.Errorf("%w: tips: %v", ErrBadArgs, err)
	}
	text, ok, err := optional(args, 2)
	if err != nil {
		return p, err
	}
	if ok {
		s := string(text)
		p.text = &s
	}
	if p.voice, _, err = optional(args, 3); err != nil {
		return p, err
	}
	if private && len(args) > 4 {
		p.recipients = append(p.recipients, args[4:]...)
	}
	return p, nil
}

// record renders ["TAV", text|None, voice|None, unix-seconds] and, for
// private posts, a trailing list of recipients.
func (p post) record(unix int64, private bool) bipf.Value {
	items := []bipf.Value{bipf.String(TagTextAndVoice), bipf.None(), bipf.None(), bipf.Int(unix)}
	if p.text != nil {
		items[1] = bipf.String(*p.text)
	}
	if p.voice != nil {
		items[2] = bipf.Bytes(p.voice)
	}
	if private {
		rcps := make([]bipf.Value, len(p.recipients))
		for i, r := range p.recipients {
			rcps[i] = bipf.String(r)
		}
		items = append(items, bipf.List(rcps...))
	}
	return bipf.List(items...)
}

func (r *Router) handlePublicPost(ctx context.Context, args []string) error {
	p, err := parsePost(args, false)
	if err != nil {
		return err
	}
	return r.publish(ctx, p.record(r.now().Unix(), false))
}

func (r *Router) handlePrivatePost(ctx context.Context, args []string) error {
	p, err := parsePost(args, true)
	if err != nil {
		return err
	}
	return r.publish(ctx, p.record(r.now().Unix(), true))
}

func (r *Router) handleIAm(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: iam needs an alias", ErrBadArgs)
	}
	alias, err := unb64String(args[1])
	if err != nil {
		return err
	}
	return r.publish(ctx, bipf.List(bipf.String(TagIAm), bipf.String(alias)))
}
