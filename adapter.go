package lineterm

import (
	"errors"
	"io"
	"sync"
)

// maxPending bounds the polling buffer. Once it holds maxPending lines,
// appending another drops the oldest and reports ErrBacklogOverflow.
const maxPending = 1000

// ErrBacklogOverflow is reported, via the adapter's error handler, when
// the polling buffer exceeds maxPending and the oldest pending line is
// dropped to make room.
var ErrBacklogOverflow = errors.New("lineterm: pending line backlog overflowed, oldest line dropped")

// AdapterError wraps an error surfaced by the Adapter with the line
// that was in flight when it occurred, if any.
type AdapterError struct {
	Err  error
	Line string
}

func (e *AdapterError) Error() string {
	return e.Err.Error()
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// AdapterOption configures an Adapter at construction time.
type AdapterOption func(*Adapter)

// WithPushCallback installs a callback invoked with each finalized
// line. When set, it suppresses both the pushed stream and the
// polling buffer: a line goes to the callback only.
func WithPushCallback(fn func(line string)) AdapterOption {
	return func(a *Adapter) {
		a.pushCallback = fn
	}
}

// WithLineEvent installs a callback invoked with each finalized line,
// alongside whatever other surface is active. Unlike the push
// callback, this never suppresses the stream or polling buffer.
func WithLineEvent(fn func(line string)) AdapterOption {
	return func(a *Adapter) {
		a.onLine = fn
	}
}

// WithStream installs a writer that receives each finalized line
// followed by '\n'. Active only when no push callback is set.
func WithStream(w io.Writer) AdapterOption {
	return func(a *Adapter) {
		a.stream = w
	}
}

// WithErrorHandler installs a callback invoked whenever the adapter
// has an error to surface, such as a backlog overflow or a failed
// stream write. Without one, such errors are silently dropped.
func WithErrorHandler(fn func(*AdapterError)) AdapterOption {
	return func(a *Adapter) {
		a.onError = fn
	}
}

// WithMaxPending overrides the polling buffer's capacity, which
// otherwise defaults to maxPending. A non-positive value is ignored.
func WithMaxPending(n int) AdapterOption {
	return func(a *Adapter) {
		if n > 0 {
			a.maxPending = n
		}
	}
}

// Adapter drives a Terminal and a Strategy from a sequence of chunks,
// delivering finalized lines to whichever output surfaces were
// configured. It owns the one piece of genuine concurrency in this
// package: a Strategy's timer-driven flush fires on its own goroutine,
// through the callback installed by SetEmitCallback, and must not race
// the goroutine calling WriteChunk.
type Adapter struct {
	mu sync.Mutex

	term     *Terminal
	strategy Strategy

	pushCallback func(line string)
	onLine       func(line string)
	stream       io.Writer
	onError      func(*AdapterError)

	pending    []string
	maxPending int
	closed     bool
}

// NewAdapter builds an Adapter driving term with strategy, applying
// opts. The adapter installs its own line-ready callback on term,
// replacing any previously set, and its own emit callback on strategy.
func NewAdapter(term *Terminal, strategy Strategy, opts ...AdapterOption) *Adapter {
	a := &Adapter{term: term, strategy: strategy, maxPending: maxPending}
	for _, opt := range opts {
		opt(a)
	}
	term.SetLineReadyCallback(a.onNewline)
	strategy.SetEmitCallback(a.timerFlush)
	return a
}

// SetStrategy swaps the Strategy used for future flush decisions,
// letting a config watcher retune timing without tearing the adapter
// down. The outgoing strategy is disposed, cancelling any timer it had
// armed; the incoming one receives the adapter's emit callback.
func (a *Adapter) SetStrategy(strategy Strategy) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.strategy.Dispose()
	a.strategy = strategy
	a.strategy.SetEmitCallback(a.timerFlush)
}

// WriteChunk feeds chunk through the terminal, then asks the strategy
// whether the resulting line should flush now. A '\n' in chunk has
// already triggered an inline flush, via the terminal's line-ready
// callback, before Write even returns.
func (a *Adapter) WriteChunk(chunk string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}

	state := a.term.Write(chunk)
	if a.strategy.OnWrite(a.term, state) && a.term.HasContent() {
		a.flushLocked()
	}
}

// onNewline is installed as the Terminal's line-ready callback. It
// runs synchronously, reentrantly, from within the Write call that
// WriteChunk already holds the lock for, so it must not re-lock.
func (a *Adapter) onNewline() {
	a.flushLocked()
}

// timerFlush is installed as the Strategy's emit callback. It runs on
// whatever goroutine the strategy's timer fires on, so unlike
// onNewline it must acquire the lock itself.
func (a *Adapter) timerFlush() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	if a.term.HasContent() {
		a.flushLocked()
	}
}

// flushLocked renders the current line, resets the terminal for the
// next one, and delivers the line to whichever surfaces are active.
// Callers must already hold mu.
func (a *Adapter) flushLocked() {
	hadContent := a.term.HasContent()
	line := a.term.RenderLine()
	a.term.Reset()

	if !hadContent {
		return
	}
	a.deliverLocked(line)
}

func (a *Adapter) deliverLocked(line string) {
	if a.onLine != nil {
		a.onLine(line)
	}

	if a.pushCallback != nil {
		a.pushCallback(line)
		return
	}

	if a.stream != nil {
		if _, err := io.WriteString(a.stream, line+"\n"); err != nil {
			// §7.3: a host error during flush is surfaced and the
			// adapter is torn down regardless, unlike a backlog
			// overflow, which is a recoverable, documented policy.
			a.teardownOnErrorLocked(err, line)
			return
		}
	}

	a.appendPendingLocked(line)
}

// teardownOnErrorLocked reports a host error and disposes the strategy
// and terminal, per §4.F's "on error: ... always dispose." The adapter
// stops accepting further writes, same as after Close.
func (a *Adapter) teardownOnErrorLocked(err error, line string) {
	a.reportLocked(err, line)
	if a.closed {
		return
	}
	a.closed = true
	a.strategy.Dispose()
	a.term.Dispose()
}

func (a *Adapter) appendPendingLocked(line string) {
	a.pending = append(a.pending, line)
	if len(a.pending) > a.maxPending {
		a.pending = a.pending[1:]
		a.reportLocked(ErrBacklogOverflow, line)
	}
}

func (a *Adapter) reportLocked(err error, line string) {
	if a.onError != nil {
		a.onError(&AdapterError{Err: err, Line: line})
	}
}

// GetPendingLines returns a snapshot copy of every line currently held
// in the polling buffer, oldest first, without clearing it.
func (a *Adapter) GetPendingLines() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.pending) == 0 {
		return nil
	}
	out := make([]string, len(a.pending))
	copy(out, a.pending)
	return out
}

// ConsumePendingLines drains and returns every line currently held in
// the polling buffer, oldest first, leaving it empty.
func (a *Adapter) ConsumePendingLines() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.pending) == 0 {
		return nil
	}
	out := a.pending
	a.pending = nil
	return out
}

// ClearPendingLines discards everything currently held in the polling
// buffer without returning it.
func (a *Adapter) ClearPendingLines() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = nil
}

// Close asks the strategy for a final flush decision, applies it if
// the terminal still holds content, then disposes both the strategy
// and the terminal. The adapter stops accepting further writes.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	if a.strategy.Flush() && a.term.HasContent() {
		a.flushLocked()
	}
	a.closed = true
	a.strategy.Dispose()
	a.term.Dispose()
}
