// Package executor runs shell command batches on a bounded pool of workers.
//
// A batch is executed sequentially in submission order on a single pool slot;
// the pool only bounds how many batches run concurrently. Batch outcome is
// atomic: the first failing command fails the whole batch.
package executor

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shellhookapp/shellhook-server/internal/errors"
)

// CommandResult is the outcome of one executed command within a batch.
type CommandResult struct {
	Command string `json:"command"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

// Config holds executor pool configuration.
type Config struct {
	// Command is the process each command string is handed to (default: /bin/sh)
	Command string
	// Args are inserted before the command string (default: ["-c"])
	Args []string
	// PoolSize is the maximum number of concurrently executing batches (default: 2)
	PoolSize int
	// IdleTimeout is how long a worker lingers without work before exiting (default: 30s)
	IdleTimeout time.Duration
	// WorkDir is the working directory for spawned commands (default: inherited)
	WorkDir string
	// HistorySize bounds the retained command history (default: 100)
	HistorySize int
	// Validate is an optional hook run once at construction to verify the
	// configured process actually works. When nil, the command is resolved
	// with exec.LookPath instead.
	Validate func(ctx context.Context, cfg Config) error
}

// setDefaults applies default values to unset fields.
func (c *Config) setDefaults() {
	if c.Command == "" {
		c.Command = "/bin/sh"
	}
	if c.Args == nil {
		c.Args = []string{"-c"}
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 2
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Second
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 100
	}
}

// Pool executes command batches on a bounded set of workers. Workers are
// spawned on demand and exit after IdleTimeout without work.
type Pool struct {
	cfg    Config
	logger *slog.Logger

	jobs chan *job
	quit chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	running int // workers alive
	idle    int // workers currently waiting for a job

	history *history
	closed  atomic.Bool
}

type job struct {
	ctx      context.Context
	commands []string
	done     chan jobResult
}

type jobResult struct {
	results []CommandResult
	err     error
}

// New creates an executor pool and verifies the configured process.
func New(cfg Config, logger *slog.Logger) (*Pool, error) {
	cfg.setDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Verify the process before accepting work.
	if cfg.Validate != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := cfg.Validate(ctx, cfg); err != nil {
			return nil, errors.Wrap(err, errors.CodeConfiguration, "executor validation hook failed")
		}
	} else if _, err := exec.LookPath(cfg.Command); err != nil {
		return nil, errors.Wrapf(err, errors.CodeConfiguration, "executor command %q not found", cfg.Command)
	}

	logger.Debug("executor pool created",
		"command", cfg.Command,
		"pool_size", cfg.PoolSize,
		"idle_timeout", cfg.IdleTimeout,
	)

	return &Pool{
		cfg:     cfg,
		logger:  logger,
		jobs:    make(chan *job),
		quit:    make(chan struct{}),
		history: newHistory(cfg.HistorySize),
	}, nil
}

// ExecuteCommands runs a batch of commands sequentially in submission order.
// An empty batch is a legal no-op and trivially succeeds. The batch fails
// atomically on the first command error.
func (p *Pool) ExecuteCommands(ctx context.Context, commands []string) ([]CommandResult, error) {
	if p.closed.Load() {
		return nil, errors.Execution("executor pool is closed")
	}
	if len(commands) == 0 {
		return []CommandResult{}, nil
	}

	j := &job{
		ctx:      ctx,
		commands: commands,
		done:     make(chan jobResult, 1),
	}

	// A worker counted as idle can time out between the ensureWorker check
	// and the send below. Re-check on a short interval so a submission never
	// strands behind a worker that exited just after being counted.
	p.ensureWorker()
	respawn := time.NewTicker(10 * time.Millisecond)
	defer respawn.Stop()

submit:
	for {
		select {
		case p.jobs <- j:
			break submit
		case <-respawn.C:
			p.ensureWorker()
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), errors.CodeExecution, "submit batch")
		case <-p.quit:
			return nil, errors.Execution("executor pool is closed")
		}
	}

	select {
	case res := <-j.done:
		return res.results, res.err
	case <-ctx.Done():
		// The worker notices the cancelled context between commands.
		return nil, errors.Wrap(ctx.Err(), errors.CodeExecution, "await batch")
	}
}

// History returns a snapshot of the retained command history, oldest first.
func (p *Pool) History() []HistoryEntry {
	return p.history.entries()
}

// Close shuts the pool down and waits for in-flight batches to finish.
func (p *Pool) Close() error {
	if p.closed.CompareAndSwap(false, true) {
		close(p.quit)
		p.wg.Wait()
	}
	return nil
}

// ensureWorker spawns a worker when no idle worker is available and the pool
// is below capacity.
func (p *Pool) ensureWorker() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.idle > 0 || p.running >= p.cfg.PoolSize {
		return
	}
	p.running++
	p.wg.Add(1)
	go p.worker()
}

func (p *Pool) worker() {
	defer func() {
		p.mu.Lock()
		p.running--
		p.mu.Unlock()
		p.wg.Done()
	}()

	idleTimer := time.NewTimer(p.cfg.IdleTimeout)
	defer idleTimer.Stop()

	for {
		p.setIdle(+1)
		select {
		case j := <-p.jobs:
			p.setIdle(-1)
			p.serve(j)

			if !idleTimer.Stop() {
				select {
				case <-idleTimer.C:
				default:
				}
			}
			idleTimer.Reset(p.cfg.IdleTimeout)

		case <-idleTimer.C:
			p.setIdle(-1)
			// A submitter may have counted this worker as idle just as the
			// timer fired. Take one last pending job instead of stranding it.
			select {
			case j := <-p.jobs:
				p.serve(j)
				idleTimer.Reset(p.cfg.IdleTimeout)
			default:
				return
			}

		case <-p.quit:
			p.setIdle(-1)
			return
		}
	}
}

func (p *Pool) serve(j *job) {
	results, err := p.runBatch(j.ctx, j.commands)
	j.done <- jobResult{results: results, err: err}
}

func (p *Pool) setIdle(delta int) {
	p.mu.Lock()
	p.idle += delta
	p.mu.Unlock()
}

// runBatch executes the commands of one batch sequentially.
func (p *Pool) runBatch(ctx context.Context, commands []string) ([]CommandResult, error) {
	results := make([]CommandResult, 0, len(commands))

	for _, command := range commands {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeExecution, "batch cancelled")
		}

		args := append(slices.Clone(p.cfg.Args), command)
		cmd := exec.CommandContext(ctx, p.cfg.Command, args...)
		cmd.Dir = p.cfg.WorkDir

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()

		entry := HistoryEntry{
			Command:    command,
			Stdout:     stdout.String(),
			Stderr:     stderr.String(),
			ExecutedAt: time.Now(),
		}
		if err != nil {
			entry.Error = err.Error()
		}
		p.history.add(entry)

		if err != nil {
			p.logger.Debug("command failed",
				"command", command,
				"stderr", stderr.String(),
				"error", err,
			)
			return nil, errors.Wrapf(err, errors.CodeExecution, "command %q failed", command).
				WithDetails(map[string]string{"stderr": stderr.String()})
		}

		results = append(results, CommandResult{
			Command: command,
			Stdout:  stdout.String(),
			Stderr:  stderr.String(),
		})
	}

	return results, nil
}
