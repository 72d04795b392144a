package cli

import (
	"context"
	"errors"

	"github.com/matzehuels/axnarrate/pkg/axtree"
	apperrors "github.com/matzehuels/axnarrate/pkg/errors"
	"github.com/matzehuels/axnarrate/pkg/pipeline"
	"github.com/matzehuels/axnarrate/pkg/session"
)

// input is a loaded tree and where it came from.
type input struct {
	tree   *axtree.Tree
	raw    []byte
	source string // file path, "stdin" or "session:<id>"
}

// loadInput loads the tree named by args: a file, "-" for standard input,
// or, with no argument, the latest saved tree. Trees read from a file or
// stdin become the latest saved tree unless save is false.
func (c *CLI) loadInput(ctx context.Context, runner *pipeline.Runner, args []string, save bool) (*input, error) {
	if len(args) == 0 {
		return c.loadLatest(ctx, runner)
	}

	t, raw, err := runner.Load(ctx, args[0])
	if err != nil {
		return nil, err
	}
	in := &input{tree: t, raw: raw, source: args[0]}
	if args[0] == "-" {
		in.source = "stdin"
	}
	if save {
		c.remember(ctx, in)
	}
	return in, nil
}

func (c *CLI) loadLatest(ctx context.Context, runner *pipeline.Runner) (*input, error) {
	store, err := c.newSessionStore(ctx)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "no input: pass a file, or - for standard input")
	}
	defer store.Close()

	e, err := store.Latest(ctx)
	if errors.Is(err, session.ErrNotFound) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "no input and no saved tree: pass a file, or - for standard input")
	}
	if err != nil {
		return nil, err
	}

	source := "session:" + e.ID
	t, err := runner.LoadBytes(ctx, source, e.Data)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("using saved tree", "id", e.ID, "source", e.Source, "saved", e.CreatedAt)
	return &input{tree: t, raw: e.Data, source: source}, nil
}

// remember saves in as the latest tree. Failures only warn: narration does
// not depend on persistence.
func (c *CLI) remember(ctx context.Context, in *input) {
	store, err := c.newSessionStore(ctx)
	if err != nil {
		c.Logger.Warn("session store unavailable", "err", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	e, err := session.NewEntry(in.raw, in.source, c.Config.Session.TTL.Duration)
	if err == nil {
		err = store.Save(ctx, e)
	}
	if err != nil {
		c.Logger.Warn("could not save tree", "err", err)
		return
	}
	c.Logger.Debug("saved tree", "id", e.ID)
}
