package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMiddleware struct {
	meta MiddlewareMeta
	fn   func(ctx context.Context, d *Dashboard) error
}

func (s stubMiddleware) Meta() MiddlewareMeta { return s.meta }

func (s stubMiddleware) Handle(ctx context.Context, d *Dashboard) error {
	if s.fn == nil {
		return nil
	}
	return s.fn(ctx, d)
}

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) step(name string) func(context.Context, *Dashboard) error {
	return func(context.Context, *Dashboard) error {
		r.mu.Lock()
		r.order = append(r.order, name)
		r.mu.Unlock()
		return nil
	}
}

func TestPipeline_RunsStagesInOrder(t *testing.T) {
	rec := &recorder{}
	p := New("test",
		stubMiddleware{meta: MiddlewareMeta{Name: "render", Stage: 3}, fn: rec.step("render")},
		stubMiddleware{meta: MiddlewareMeta{Name: "load", Stage: 0}, fn: rec.step("load")},
		stubMiddleware{meta: MiddlewareMeta{Name: "count", Stage: 1}, fn: rec.step("count")},
		nil,
	)
	assert.Equal(t, "0:load 1:count 3:render", p.Describe())

	err := p.Run(context.Background(), NewDashboard(Request{Films: []string{"A New Hope"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"load", "count", "render"}, rec.order)
}

func TestPipeline_EmptySelection(t *testing.T) {
	called := false
	p := New("test", stubMiddleware{
		meta: MiddlewareMeta{Name: "load"},
		fn:   func(context.Context, *Dashboard) error { called = true; return nil },
	})
	err := p.Run(context.Background(), NewDashboard(Request{}))
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.False(t, called)
}

func TestPipeline_CriticalFailureStops(t *testing.T) {
	boom := errors.New("boom")
	reached := false
	p := New("test",
		stubMiddleware{
			meta: MiddlewareMeta{Name: "load", Stage: 0, Critical: true},
			fn:   func(context.Context, *Dashboard) error { return boom },
		},
		stubMiddleware{
			meta: MiddlewareMeta{Name: "count", Stage: 1},
			fn:   func(context.Context, *Dashboard) error { reached = true; return nil },
		},
	)
	d := NewDashboard(Request{Films: []string{"x"}})
	err := p.Run(context.Background(), d)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var mwErr *MiddlewareError
	require.ErrorAs(t, err, &mwErr)
	assert.Equal(t, "load", mwErr.Middleware)
	assert.True(t, mwErr.Critical)
	assert.False(t, reached)
}

func TestPipeline_NonCriticalFailureBecomesWarning(t *testing.T) {
	reached := false
	p := New("test",
		stubMiddleware{
			meta: MiddlewareMeta{Name: "corpora", Stage: 0},
			fn:   func(context.Context, *Dashboard) error { return errors.New("no words") },
		},
		stubMiddleware{
			meta: MiddlewareMeta{Name: "render", Stage: 1},
			fn:   func(context.Context, *Dashboard) error { reached = true; return nil },
		},
	)
	d := NewDashboard(Request{Films: []string{"x"}})
	require.NoError(t, p.Run(context.Background(), d))
	assert.True(t, reached)
	assert.Equal(t, []string{"corpora: no words"}, d.Warnings())
}

func TestPipeline_StageRunsConcurrently(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	wait := func(ctx context.Context, _ *Dashboard) error {
		started <- struct{}{}
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p := New("test",
		stubMiddleware{meta: MiddlewareMeta{Name: "a", Stage: 2}, fn: wait},
		stubMiddleware{meta: MiddlewareMeta{Name: "b", Stage: 2}, fn: wait},
	)
	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background(), NewDashboard(Request{Films: []string{"x"}})) }()

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("middlewares in one stage did not start together")
		}
	}
	close(release)
	require.NoError(t, <-done)
}

func TestPipeline_MiddlewareTimeout(t *testing.T) {
	p := New("test", stubMiddleware{
		meta: MiddlewareMeta{Name: "slow", Critical: true, Timeout: 20 * time.Millisecond},
		fn: func(ctx context.Context, _ *Dashboard) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	err := p.Run(context.Background(), NewDashboard(Request{Films: []string{"x"}}))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDashboard_Accessors(t *testing.T) {
	films := []string{"A New Hope"}
	d := NewDashboard(Request{Films: films})
	films[0] = "mutated"
	assert.Equal(t, "A New Hope", d.Request.Films[0])
	assert.NotEmpty(t, d.RunID)
	assert.NotEqual(t, d.RunID, NewDashboard(Request{}).RunID)

	d.AddArtifact("page", "/tmp/out/dashboard.html")
	p, ok := d.Artifact("page")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/out/dashboard.html", p)

	d.AddWarning("")
	assert.Empty(t, d.Warnings())
}
