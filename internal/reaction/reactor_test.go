package reaction

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellhookapp/shellhook-server/internal/errors"
	"github.com/shellhookapp/shellhook-server/internal/executor"
)

// recordingExecutor captures submitted batches for assertions.
type recordingExecutor struct {
	mu      sync.Mutex
	batches [][]string
	err     error
	closed  bool
}

func (e *recordingExecutor) ExecuteCommands(_ context.Context, commands []string) ([]executor.CommandResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	batch := make([]string, len(commands))
	copy(batch, commands)
	e.batches = append(e.batches, batch)

	results := make([]executor.CommandResult, len(commands))
	for i, cmd := range commands {
		results[i] = executor.CommandResult{Command: cmd}
	}
	return results, nil
}

func (e *recordingExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *recordingExecutor) submitted() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, len(e.batches))
	copy(out, e.batches)
	return out
}

// collectingSink records every reported failure.
type collectingSink struct {
	mu       sync.Mutex
	failures []error
}

func (s *collectingSink) sink(_ string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, err)
}

func (s *collectingSink) errs() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.failures...)
}

func TestReact_SingleTemplate(t *testing.T) {
	exec := &recordingExecutor{}
	r := New(Options{
		PluginID:         "rct_single",
		ReactorID:        "pipeline-main",
		CommandTemplates: []string{"echo {{event.filename}}"},
		Executor:         BorrowedExecutor(exec),
	})

	event := Event{Type: EventAdd, FullPath: "/a/b/c.txt"}
	result := r.React(context.Background(), event)

	require.True(t, result.Success, "unexpected failure: %v", result.Err)
	assert.Equal(t, "rct_single", result.PluginID)
	assert.Equal(t, "pipeline-main", result.ReactorID)
	assert.Equal(t, event, result.Event)
	assert.NoError(t, result.Err)

	require.Len(t, exec.submitted(), 1)
	assert.Equal(t, []string{"echo c.txt"}, exec.submitted()[0])
}

func TestReact_TemplatesBeforeGenerator(t *testing.T) {
	exec := &recordingExecutor{}
	r := New(Options{
		CommandTemplates: []string{"cmdT1", "cmdT2"},
		CommandGenerator: func(Event) ([]string, error) {
			return []string{"cmdA", "cmdB"}, nil
		},
		Executor: BorrowedExecutor(exec),
	})

	result := r.React(context.Background(), Event{Type: EventChange, FullPath: "/x/y.txt"})

	require.True(t, result.Success)
	require.Len(t, exec.submitted(), 1)
	assert.Equal(t, []string{"cmdT1", "cmdT2", "cmdA", "cmdB"}, exec.submitted()[0])
}

func TestReact_RenderFailureSubmitsNothing(t *testing.T) {
	exec := &recordingExecutor{}
	sink := &collectingSink{}
	r := New(Options{
		CommandTemplates: []string{"echo ok", "echo {{#broken"},
		Executor:         BorrowedExecutor(exec),
		OnError:          sink.sink,
	})

	event := Event{Type: EventAdd, FullPath: "/a/b/c.txt"}
	result := r.React(context.Background(), event)

	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Err, errors.ErrRender))
	assert.Equal(t, event, result.Event)
	assert.Empty(t, exec.submitted(), "no commands may reach the executor on render failure")
	assert.NotEmpty(t, sink.errs())
}

func TestReact_GeneratorErrorDiscardsTemplateOutput(t *testing.T) {
	exec := &recordingExecutor{}
	r := New(Options{
		CommandTemplates: []string{"echo {{event.filename}}"},
		CommandGenerator: func(Event) ([]string, error) {
			return nil, fmt.Errorf("backend unavailable")
		},
		Executor: BorrowedExecutor(exec),
	})

	result := r.React(context.Background(), Event{Type: EventChange, FullPath: "/a/b/c.txt"})

	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Err, errors.ErrGeneration))
	assert.Empty(t, exec.submitted(), "rendered template output must be discarded on generator failure")
}

func TestReact_GeneratorPanicIsContained(t *testing.T) {
	exec := &recordingExecutor{}
	r := New(Options{
		CommandGenerator: func(Event) ([]string, error) {
			panic("generator exploded")
		},
		Executor: BorrowedExecutor(exec),
	})

	result := r.React(context.Background(), Event{Type: EventAdd, FullPath: "/a/b/c.txt"})

	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Err, errors.ErrGeneration))
	assert.Contains(t, result.Err.Error(), "generator exploded")
	assert.Empty(t, exec.submitted())
}

func TestReact_EmptyBatchIsSubmitted(t *testing.T) {
	exec := &recordingExecutor{}
	r := New(Options{
		// Renders empty for events without extra context.
		CommandTemplates: []string{"{{event.extra}}"},
		CommandGenerator: func(Event) ([]string, error) { return nil, nil },
		Executor:         BorrowedExecutor(exec),
	})

	result := r.React(context.Background(), Event{Type: EventUnlink, FullPath: "/a/b/gone.txt"})

	require.True(t, result.Success)
	require.Len(t, exec.submitted(), 1)
	assert.Empty(t, exec.submitted()[0], "empty batch is still submitted as a no-op")
}

func TestReact_ExecutionFailure(t *testing.T) {
	exec := &recordingExecutor{err: fmt.Errorf("pool is closed")}
	sink := &collectingSink{}
	r := New(Options{
		CommandTemplates: []string{"echo {{event.filename}}"},
		Executor:         BorrowedExecutor(exec),
		OnError:          sink.sink,
	})

	result := r.React(context.Background(), Event{Type: EventAdd, FullPath: "/a/b/c.txt"})

	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Err, errors.ErrExecution))
	assert.NotEmpty(t, sink.errs())
}

func TestReact_Idempotent(t *testing.T) {
	exec := &recordingExecutor{}
	r := New(Options{
		CommandTemplates: []string{"echo {{event.filename}}"},
		Executor:         BorrowedExecutor(exec),
	})

	event := Event{Type: EventChange, FullPath: "/a/b/c.txt"}
	first := r.React(context.Background(), event)
	second := r.React(context.Background(), event)

	require.True(t, first.Success)
	require.True(t, second.Success)

	batches := exec.submitted()
	require.Len(t, batches, 2)
	assert.Equal(t, batches[0], batches[1], "repeat reactions must produce identical batches")
}

func TestNew_GeneratesPluginID(t *testing.T) {
	r := New(Options{
		CommandTemplates: []string{"true"},
		Executor:         BorrowedExecutor(&recordingExecutor{}),
	})

	assert.NotEmpty(t, r.ID())
	assert.Contains(t, r.ID(), "rct")
}

func TestNew_NoCommandSources(t *testing.T) {
	exec := &recordingExecutor{}
	sink := &collectingSink{}
	ready := false

	r := New(Options{
		Executor: BorrowedExecutor(exec),
		OnError:  sink.sink,
		OnReady:  func(string) { ready = true },
	})

	// Configuration error surfaces at construction, through the sink.
	failures := sink.errs()
	require.NotEmpty(t, failures)
	assert.True(t, errors.Is(failures[0], errors.ErrConfiguration))

	// Readiness fires even for a degraded reactor.
	assert.True(t, ready)

	// Reacting still yields a well-formed result: an empty batch, submitted.
	result := r.React(context.Background(), Event{Type: EventAdd, FullPath: "/a/b/c.txt"})
	assert.True(t, result.Success)
	require.Len(t, exec.submitted(), 1)
	assert.Empty(t, exec.submitted()[0])
}

func TestNew_NoExecutorSource(t *testing.T) {
	sink := &collectingSink{}
	r := New(Options{
		CommandTemplates: []string{"true"},
		Executor:         ExecutorSource{},
		OnError:          sink.sink,
	})

	failures := sink.errs()
	require.NotEmpty(t, failures)
	assert.True(t, errors.Is(failures[0], errors.ErrConfiguration))

	result := r.React(context.Background(), Event{Type: EventAdd, FullPath: "/a/b/c.txt"})
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Err, errors.ErrConfiguration))

	assert.NoError(t, r.Close())
}

func TestNew_OnReadyFiresForEveryBranch(t *testing.T) {
	tests := []struct {
		name string
		opts func() Options
	}{
		{"templates only", func() Options {
			return Options{CommandTemplates: []string{"true"}}
		}},
		{"generator only", func() Options {
			return Options{CommandGenerator: func(Event) ([]string, error) { return nil, nil }}
		}},
		{"both", func() Options {
			return Options{
				CommandTemplates: []string{"true"},
				CommandGenerator: func(Event) ([]string, error) { return nil, nil },
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var readyID string
			opts := tt.opts()
			opts.PluginID = "rct_ready"
			opts.Executor = BorrowedExecutor(&recordingExecutor{})
			opts.OnReady = func(pluginID string) { readyID = pluginID }

			New(opts)
			assert.Equal(t, "rct_ready", readyID)
		})
	}
}

func TestNew_ProbeValidationReportsBadTemplates(t *testing.T) {
	sink := &collectingSink{}
	New(Options{
		CommandTemplates: []string{"echo ok", "echo {{#broken"},
		Executor:         BorrowedExecutor(&recordingExecutor{}),
		OnError:          sink.sink,
	})

	failures := sink.errs()
	require.NotEmpty(t, failures)
	assert.True(t, errors.Is(failures[0], errors.ErrRender))
}

func TestClose_BorrowedExecutorIsNotClosed(t *testing.T) {
	exec := &recordingExecutor{}
	r := New(Options{
		CommandTemplates: []string{"true"},
		Executor:         BorrowedExecutor(exec),
	})

	require.NoError(t, r.Close())
	assert.False(t, exec.closed, "borrowed executors outlive the reactor")
}

func TestClose_OwnedExecutorIsClosed(t *testing.T) {
	cfg := executor.Config{
		PoolSize: 1,
		Validate: func(context.Context, executor.Config) error { return nil },
	}
	r := New(Options{
		CommandTemplates: []string{"true"},
		Executor:         OwnedExecutor(cfg),
	})

	result := r.React(context.Background(), Event{Type: EventAdd, FullPath: "/a/b/c.txt"})
	require.True(t, result.Success, "unexpected failure: %v", result.Err)

	require.NoError(t, r.Close())

	// A closed owned pool rejects further work.
	result = r.React(context.Background(), Event{Type: EventAdd, FullPath: "/a/b/c.txt"})
	assert.False(t, result.Success)
}
