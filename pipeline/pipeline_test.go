package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Skryldev/snapweave/core"
	"github.com/Skryldev/snapweave/edit"
	apperrors "github.com/Skryldev/snapweave/errors"
)

// discard is a core.Logger that drops everything.
type discard struct{}

func (discard) Debug(string, ...interface{}) {}
func (discard) Info(string, ...interface{})  {}
func (discard) Warn(string, ...interface{})  {}
func (discard) Error(string, ...interface{}) {}

// recordingLogger keeps the messages logged at error level.
type recordingLogger struct {
	discard
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

// recordingHook records the step names it sees.
type recordingHook struct {
	before, after []string
	errs          []error
}

func (h *recordingHook) BeforeStep(_ context.Context, name string, _ *core.Buffer) {
	h.before = append(h.before, name)
}

func (h *recordingHook) AfterStep(_ context.Context, name string, _ *core.Buffer, _ time.Duration, err error) {
	h.after = append(h.after, name)
	h.errs = append(h.errs, err)
}

func TestRunEmptyStackIsIdentity(t *testing.T) {
	src := randomBuffer(t, 5, 7, 3, core.Depth8, 10)
	want := src.Clone()
	out, err := New().WithLogger(discard{}).Run(t.Context(), src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Equal(want) {
		t.Error("empty stack changed the buffer")
	}
}

func TestRunOrderMatters(t *testing.T) {
	p := New().WithLogger(discard{})

	// crop to the first pixel, then brighten: the max is 50, so 100 clips to 50
	out, err := p.Run(t.Context(), bufferOf(t, 1, 2, 1, core.Depth8, 50, 200),
		[]edit.Edit{cropEdit(t, 0, 0, 1, 1), brightness(t, 2)})
	if err != nil {
		t.Fatal(err)
	}
	samples(t, out, 50)

	// brighten first: the max is 200, so 50 doubles to 100
	out, err = p.Run(t.Context(), bufferOf(t, 1, 2, 1, core.Depth8, 50, 200),
		[]edit.Edit{brightness(t, 2), cropEdit(t, 0, 0, 1, 1)})
	if err != nil {
		t.Fatal(err)
	}
	samples(t, out, 100)
}

func TestRunHooksAndNames(t *testing.T) {
	h := &recordingHook{}
	p := New().WithLogger(discard{}).AddHook(h)

	unnamed, err := edit.NewContrast("", 1)
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Run(t.Context(), randomBuffer(t, 4, 4, 3, core.Depth8, 11),
		[]edit.Edit{brightness(t, 1), unnamed, cropEdit(t, 0, 0, 2, 2)})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"brighten", "contrast", "crop"}
	for i, n := range want {
		if h.before[i] != n || h.after[i] != n {
			t.Errorf("step %d: before %q after %q, want %q", i, h.before[i], h.after[i], n)
		}
		if h.errs[i] != nil {
			t.Errorf("step %d: unexpected error %v", i, h.errs[i])
		}
	}
}

func TestRunStopsAtFailingEdit(t *testing.T) {
	h := &recordingHook{}
	log := &recordingLogger{}
	p := New().WithLogger(log).AddHook(h)

	out, err := p.Run(t.Context(), core.NewBuffer(100, 100, 3, core.Depth16),
		[]edit.Edit{cropEdit(t, 0, 0, 150, 150), brightness(t, 2)})
	if out != nil {
		t.Error("failed run returned a buffer")
	}
	var oob *apperrors.CropOutOfBoundsError
	if !errors.As(err, &oob) {
		t.Fatalf("got %v, want CropOutOfBoundsError", err)
	}
	if !apperrors.IsCategory(err, apperrors.CategoryEdit) {
		t.Errorf("category: got %v, want edit", err)
	}
	if len(h.after) != 1 || h.errs[0] == nil {
		t.Errorf("hooks: after=%v errs=%v", h.after, h.errs)
	}
	if len(log.errors) != 1 || log.errors[0] != "edit.crop.out_of_bounds" {
		t.Errorf("error log: got %v", log.errors)
	}
}

func TestRunUnknownEditIsLogged(t *testing.T) {
	log := &recordingLogger{}
	_, err := New().WithLogger(log).Run(t.Context(), core.NewBuffer(1, 1, 3, core.Depth8),
		[]edit.Edit{rogue{brightness(t, 1)}})
	if !errors.Is(err, apperrors.ErrUnknownEdit) {
		t.Fatalf("got %v, want ErrUnknownEdit", err)
	}
	if len(log.errors) != 1 || log.errors[0] != "edit.unknown" {
		t.Errorf("error log: got %v", log.errors)
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	h := &recordingHook{}
	_, err := New().WithLogger(discard{}).AddHook(h).Run(ctx, core.NewBuffer(2, 2, 3, core.Depth8),
		[]edit.Edit{brightness(t, 1)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if !apperrors.IsCategory(err, apperrors.CategoryPipeline) {
		t.Errorf("category: got %v, want pipeline", err)
	}
	if len(h.before) != 0 {
		t.Error("edit ran after cancellation")
	}
}

func TestRunNilBuffer(t *testing.T) {
	_, err := New().Run(t.Context(), nil, nil)
	if !errors.Is(err, apperrors.ErrEmptyInput) {
		t.Fatalf("got %v, want ErrEmptyInput", err)
	}
}

func TestRunNilPointerEdit(t *testing.T) {
	h := &recordingHook{}
	var nilBrightness *edit.Brightness
	_, err := New().WithLogger(discard{}).AddHook(h).Run(t.Context(), core.NewBuffer(1, 1, 3, core.Depth8),
		[]edit.Edit{nilBrightness})
	if !errors.Is(err, apperrors.ErrUnknownEdit) {
		t.Fatalf("got %v, want ErrUnknownEdit", err)
	}
	if len(h.before) != 1 || h.before[0] != "<nil>" {
		t.Errorf("step names: %v", h.before)
	}
}

func TestRunPointerEdit(t *testing.T) {
	b := brightness(t, 2)
	out, err := New().WithLogger(discard{}).Run(t.Context(), bufferOf(t, 1, 2, 1, core.Depth8, 50, 200),
		[]edit.Edit{&b})
	if err != nil {
		t.Fatal(err)
	}
	samples(t, out, 100, 200)
}
