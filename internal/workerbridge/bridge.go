// Package workerbridge wraps the orchestrator with an optional
// off-main-thread executor (spec §4.5). "Off-thread" is modeled as a
// single long-lived goroutine per Bridge, shared by every surface the
// bridge serves, rather than an OS thread or
// JS Worker: the bridge communicates with it purely via channel message
// copies, preserving the spec's "no shared mutable state" requirement.
package workerbridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/phanxgames/canvaslayout/internal/graph"
	"github.com/phanxgames/canvaslayout/internal/layoutengine"
	"github.com/phanxgames/canvaslayout/internal/orchestrator"
)

// DefaultTimeout bounds how long the bridge waits for a worker response
// before falling back to in-process execution. Resolves the Open
// Question in spec §9 ("worker bridge lacks a timeout... recommend
// bounded timeout + fallback to in-process").
const DefaultTimeout = 5 * time.Second

// request is the message posted to a worker goroutine: a serialized
// (deep-copied) graph snapshot plus options, exactly the
// { surface, graph, options } shape in spec §4.5.
type request struct {
	surfaceID  string
	g          *graph.LayoutGraph
	engineName string
	opts       layoutengine.Options
	priority   orchestrator.Priority
	reply      chan response
}

// response mirrors the worker's { result } | { error } reply.
type response struct {
	result *layoutengine.Result
	err    error
}

// Bridge optionally offloads layout execution to a worker goroutine that
// hosts its own orchestrator instance, falling back transparently to
// running in-process when worker use is disabled, unsupported, or times
// out (spec §4.5, §7 "worker unavailable... falls back... logged").
type Bridge struct {
	local  *orchestrator.Orchestrator // in-process orchestrator (main context)
	worker *orchestrator.Orchestrator // worker-hosted orchestrator (worker context)

	enabled bool
	timeout time.Duration
	logger  *slog.Logger

	requests chan request
	done     chan struct{}
}

// New constructs a bridge. If enabled is false the bridge always runs
// in-process. timeout <= 0 uses DefaultTimeout.
func New(local, worker *orchestrator.Orchestrator, enabled bool, timeout time.Duration, logger *slog.Logger) *Bridge {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		local: local, worker: worker, enabled: enabled, timeout: timeout, logger: logger,
		requests: make(chan request), done: make(chan struct{}),
	}
	if enabled && worker != nil {
		go b.workerLoop()
	}
	return b
}

// workerLoop is the single cooperative goroutine that hosts the worker
// orchestrator; it processes one request at a time (spec §5: "the worker
// is single-threaded cooperative").
func (b *Bridge) workerLoop() {
	for {
		select {
		case req := <-b.requests:
			res, err := b.worker.RunLayout(req.surfaceID, req.g.Clone(), req.engineName, req.opts, req.priority, time.Now(), 0)
			req.reply <- response{result: res, err: err}
		case <-b.done:
			return
		}
	}
}

// Close stops the worker goroutine, if running.
func (b *Bridge) Close() {
	close(b.done)
}

// RunLayout executes a layout pass, offloading to the worker goroutine
// when enabled; on timeout or when worker use is disabled/unsupported it
// runs in-process instead (spec §4.5, §7).
func (b *Bridge) RunLayout(ctx context.Context, surfaceID string, g *graph.LayoutGraph, engineName string, opts layoutengine.Options, priority orchestrator.Priority) (*layoutengine.Result, error) {
	if !b.enabled || b.worker == nil {
		return b.local.RunLayout(surfaceID, g, engineName, opts, priority, time.Now(), 0)
	}

	reply := make(chan response, 1)
	req := request{
		surfaceID: surfaceID, g: g.Clone(), engineName: engineName,
		opts: opts, priority: priority, reply: reply,
	}

	select {
	case b.requests <- req:
	case <-ctx.Done():
		b.logger.Warn("worker bridge: context cancelled before dispatch, running in-process", "surface", surfaceID)
		return b.local.RunLayout(surfaceID, g, engineName, opts, priority, time.Now(), 0)
	case <-time.After(b.timeout):
		b.logger.Warn("worker bridge: worker busy, falling back to in-process", "surface", surfaceID)
		return b.local.RunLayout(surfaceID, g, engineName, opts, priority, time.Now(), 0)
	}

	select {
	case resp := <-reply:
		return resp.result, resp.err
	case <-ctx.Done():
		b.logger.Warn("worker bridge: context cancelled awaiting reply, falling back to in-process", "surface", surfaceID)
		return b.local.RunLayout(surfaceID, g, engineName, opts, priority, time.Now(), 0)
	case <-time.After(b.timeout):
		b.logger.Warn("worker bridge: worker response timed out, falling back to in-process", "surface", surfaceID)
		return b.local.RunLayout(surfaceID, g, engineName, opts, priority, time.Now(), 0)
	}
}

// Enabled reports whether worker offload is currently active.
func (b *Bridge) Enabled() bool { return b.enabled && b.worker != nil }
