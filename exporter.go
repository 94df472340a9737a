package wayfarer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// exporter accumulates finished spans and ships them to the collector when
// either the batch size or the flush interval is reached, or on shutdown.
//
// A drained batch is handed to the transport exactly once: transmission
// failures are logged and the batch is dropped, never re-buffered. A flush
// triggered by the capacity check does not reset the interval ticker, so the
// periodic flush still fires at least once per interval (and is a no-op when
// it finds the buffer empty).
type exporter struct {
	cfg      Config
	client   *http.Client
	logger   *slog.Logger
	maxBatch int
	interval time.Duration

	mu    sync.Mutex
	spans []*Span

	started    atomic.Bool
	cancelLoop context.CancelFunc
	done       chan struct{}
	inflight   sync.WaitGroup
}

func newExporter(cfg Config, o resolvedOptions) *exporter {
	return &exporter{
		cfg:      cfg,
		client:   o.httpClient,
		logger:   o.logger,
		maxBatch: o.batchSize,
		interval: o.flushInterval,
		done:     make(chan struct{}),
	}
}

// start launches the periodic flush loop. Idempotent.
func (e *exporter) start(ctx context.Context) {
	if !e.started.CompareAndSwap(false, true) {
		e.logger.Warn("wayfarer: exporter already started")
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	e.cancelLoop = cancel
	go e.flushLoop(loopCtx)
}

// enqueue appends a finished span. When the buffer reaches the batch size
// the entire buffer is drained under the same lock acquisition, so exactly
// one batch — carrying every buffered span — goes out.
func (e *exporter) enqueue(s *Span) {
	e.mu.Lock()
	e.spans = append(e.spans, s)
	var batch []*Span
	if len(e.spans) >= e.maxBatch {
		batch = e.spans
		e.spans = nil
	}
	e.mu.Unlock()

	if batch != nil {
		e.send(batch)
	}
}

// flush atomically drains the buffer and transmits the drained batch.
// Spans enqueued while the transmission is in flight start a new batch.
// A no-op if the buffer is empty.
func (e *exporter) flush() {
	e.mu.Lock()
	batch := e.spans
	e.spans = nil
	e.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	e.send(batch)
}

// send transmits a drained batch without blocking the caller.
func (e *exporter) send(batch []*Span) {
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		e.export(batch)
	}()
}

// export POSTs one batch to the collector. Best-effort: every failure is
// logged at warn level and the batch is discarded.
func (e *exporter) export(batch []*Span) {
	if e.cfg.Endpoint == "" {
		return
	}

	if err := e.post(batch); err != nil {
		e.logger.Warn("wayfarer: span export failed",
			"error", err,
			"batch_size", len(batch),
		)
	}
}

func (e *exporter) post(batch []*Span) error {
	body, err := json.Marshal(buildExportRequest(e.cfg, batch))
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector responded %d", resp.StatusCode)
	}
	return nil
}

func (e *exporter) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(e.done)
			return
		case <-ticker.C:
			e.flush()
		}
	}
}

// shutdown stops the flush loop, drains the buffer with a final synchronous
// export, and waits for in-flight transmissions, bounded by ctx.
func (e *exporter) shutdown(ctx context.Context) {
	if e.cancelLoop != nil {
		e.cancelLoop()
		select {
		case <-e.done:
		case <-ctx.Done():
		}
	}

	e.mu.Lock()
	batch := e.spans
	e.spans = nil
	e.mu.Unlock()

	if len(batch) > 0 {
		e.export(batch)
	}

	finished := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-ctx.Done():
		e.logger.Warn("wayfarer: shutdown timed out waiting for span export")
	}
}

// len returns the current number of buffered spans. Used by tests.
func (e *exporter) len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.spans)
}
