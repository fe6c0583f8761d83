package layout

import (
	"context"
	"errors"
	"time"
)

// Command mutates a simulation. Commands run on the Runner goroutine, never
// concurrently with a step.
type Command func(*Simulation)

// RunnerOptions controls how a Runner advances its simulation.
type RunnerOptions struct {
	// StepsPerFrame is the number of steps between published frames.
	StepsPerFrame int
	// MaxFrames stops the runner after that many frames. Zero runs until the
	// context is done.
	MaxFrames int
	// Interval paces frames. Zero publishes as fast as the consumer reads.
	Interval time.Duration
}

// ErrRunnerStopped is returned by Do once the runner has exited.
var ErrRunnerStopped = errors.New("layout runner stopped")

// Runner owns a Simulation on a single goroutine. It receives commands over a
// channel and publishes frames over another.
type Runner struct {
	sim    *Simulation
	opts   RunnerOptions
	cmds   chan Command
	frames chan Frame
	done   chan struct{}
}

// NewRunner wraps sim. The simulation must not be used directly afterwards.
func NewRunner(sim *Simulation, opts RunnerOptions) *Runner {
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = 1
	}
	return &Runner{
		sim:    sim,
		opts:   opts,
		cmds:   make(chan Command, 16),
		frames: make(chan Frame),
		done:   make(chan struct{}),
	}
}

// Frames returns the channel frames are published on. It is closed when Run returns.
func (r *Runner) Frames() <-chan Frame {
	return r.frames
}

// Do queues a command. It blocks until the runner accepts it, the runner
// stops or ctx is done.
func (r *Runner) Do(ctx context.Context, cmd Command) error {
	select {
	case <-r.done:
		return ErrRunnerStopped
	default:
	}

	select {
	case r.cmds <- cmd:
		return nil
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the simulation until ctx is done or MaxFrames frames were
// published. The first frame shows the initial state.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.frames)
	defer close(r.done)

	var tick <-chan time.Time
	if r.opts.Interval > 0 {
		t := time.NewTicker(r.opts.Interval)
		defer t.Stop()
		tick = t.C
	}

	for published := 0; r.opts.MaxFrames == 0 || published < r.opts.MaxFrames; published++ {
		if published > 0 {
			if tick != nil {
				if err := r.wait(ctx, tick); err != nil {
					return err
				}
			}
			r.drain()
			r.sim.Run(r.opts.StepsPerFrame)
		}
		if err := r.publish(ctx, r.sim.Frame()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) wait(ctx context.Context, tick <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-r.cmds:
			cmd(r.sim)
		case <-tick:
			return nil
		}
	}
}

func (r *Runner) drain() {
	for {
		select {
		case cmd := <-r.cmds:
			cmd(r.sim)
		default:
			return
		}
	}
}

// publish blocks until f is taken, applying commands that arrive meanwhile.
func (r *Runner) publish(ctx context.Context, f Frame) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-r.cmds:
			cmd(r.sim)
		case r.frames <- f:
			return nil
		}
	}
}
