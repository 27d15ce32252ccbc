// Package pipeline applies an ordered edit sequence to a pixel buffer and
// runs hooks around every edit.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/Skryldev/snapweave/core"
	"github.com/Skryldev/snapweave/edit"
	apperrors "github.com/Skryldev/snapweave/errors"
	"github.com/Skryldev/snapweave/logging"
)

// Pipeline applies edits in order with hook support.  A Pipeline holds no
// per-run state and may be shared once configured.
type Pipeline struct {
	hooks  []core.Hook
	logger core.Logger
}

// New returns a Pipeline with no hooks that logs to the process-wide logger.
func New() *Pipeline { return &Pipeline{} }

// AddHook registers an observer.
func (p *Pipeline) AddHook(h core.Hook) *Pipeline {
	p.hooks = append(p.hooks, h)
	return p
}

// WithLogger overrides the process-wide logger for this pipeline.
func (p *Pipeline) WithLogger(l core.Logger) *Pipeline {
	p.logger = l
	return p
}

func (p *Pipeline) log() core.Logger {
	if p.logger != nil {
		return p.logger
	}
	return logging.L()
}

// Run applies edits to buf in order.  Run takes ownership of buf: it may be
// rewritten in place, and the caller must use the returned buffer instead.
// The first failing edit aborts the run and no partial buffer is returned.
// ctx is checked before every edit.
func (p *Pipeline) Run(ctx context.Context, buf *core.Buffer, edits []edit.Edit) (*core.Buffer, error) {
	if buf == nil {
		return nil, apperrors.New(apperrors.CategoryPipeline, "run", apperrors.ErrEmptyInput)
	}
	current := buf
	for _, e := range edits {
		name := stepName(e)
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryPipeline, name, err)
		}
		out, err := p.runStep(ctx, name, e, current)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEdit, name, err)
		}
		current = out
	}
	return current, nil
}

func (p *Pipeline) runStep(ctx context.Context, name string, e edit.Edit, buf *core.Buffer) (*core.Buffer, error) {
	p.callHooksBefore(ctx, name, buf)

	start := time.Now()
	out, err := Apply(buf, e)
	elapsed := time.Since(start)

	var (
		oob     *apperrors.CropOutOfBoundsError
		unknown *apperrors.UnknownEditError
	)
	switch {
	case err == nil:
	case errors.As(err, &oob):
		p.log().Error("edit.crop.out_of_bounds",
			"edit", name,
			"image_x", oob.ImageX,
			"image_y", oob.ImageY,
			"crop_start", []int{oob.StartX, oob.StartY},
			"crop_end", []int{oob.EndX, oob.EndY},
		)
	case errors.As(err, &unknown):
		p.log().Error("edit.unknown", "name", unknown.Name, "property", unknown.Property)
	}

	p.callHooksAfter(ctx, name, out, elapsed, err)
	return out, err
}

func (p *Pipeline) callHooksBefore(ctx context.Context, name string, buf *core.Buffer) {
	for _, h := range p.hooks {
		h.BeforeStep(ctx, name, buf)
	}
}

func (p *Pipeline) callHooksAfter(ctx context.Context, name string, buf *core.Buffer, d time.Duration, err error) {
	for _, h := range p.hooks {
		h.AfterStep(ctx, name, buf, d, err)
	}
}

// stepName labels e for hooks and errors: its display name, or its
// property when the name is empty.
func stepName(e edit.Edit) string {
	if e = edit.Deref(e); e == nil {
		return "<nil>"
	}
	if n := e.Name(); n != "" {
		return n
	}
	return string(e.Property())
}
