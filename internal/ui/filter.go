package ui

import (
	"encoding/json"
	"strings"

	"github.com/google/cel-go/cel"
)

// Filter selects calls for a subscriber with a CEL expression over:
//
//	func  string  call name, e.g. "new_in_order_event"
//	seq   int     outbox sequence
//	app   string  application tag of an entry argument ("TAV", "KAN", ...)
//	fid   string  feed id of an entry argument ("@...ed25519")
//	args  dyn     decoded call arguments
//
// The zero Filter matches everything.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// NewFilter compiles expr. An empty expression yields the match-all filter.
func NewFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("func", cel.StringType),
		cel.Variable("seq", cel.IntType),
		cel.Variable("app", cel.StringType),
		cel.Variable("fid", cel.StringType),
		cel.Variable("args", cel.DynType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	prog, err := env.Program(ast)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Match evaluates the filter against c. Undecodable args and evaluation
// errors count as no match.
func (f Filter) Match(c Call) bool {
	if !f.enabled {
		return true
	}
	var args []any
	if err := json.Unmarshal(c.Args, &args); err != nil {
		return false
	}
	app, fid := entryFacts(args)
	out, _, err := f.prog.Eval(map[string]any{
		"func": c.Func,
		"seq":  int64(c.Seq),
		"app":  app,
		"fid":  fid,
		"args": args,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// entryFacts pulls the feed id and application tag out of an entry argument.
func entryFacts(args []any) (app, fid string) {
	if len(args) == 0 {
		return "", ""
	}
	entry, ok := args[0].(map[string]any)
	if !ok {
		return "", ""
	}
	if hdr, ok := entry["header"].(map[string]any); ok {
		fid, _ = hdr["fid"].(string)
	}
	if body, ok := entry["body"].([]any); ok && len(body) > 0 {
		app, _ = body[0].(string)
	}
	return app, fid
}
