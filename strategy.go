package lineterm

import "time"

// Strategy decides when the line currently held by a Terminal should
// be flushed, beyond the flush that already happens inline whenever a
// '\n' token is processed. A Strategy owns its own timer, arming and
// cancelling it as writes arrive, and calls back into the driver
// through the callback installed by SetEmitCallback when that timer
// fires.
type Strategy interface {
	// SetEmitCallback stores the function a Strategy may invoke later,
	// from its own timer, to request an out-of-band flush.
	SetEmitCallback(cb func())
	// OnWrite is called once per Terminal.Write, with that call's
	// resulting state. Returning true asks the caller to flush
	// immediately, synchronously, before the next write.
	OnWrite(term *Terminal, state TerminalState) bool
	// Flush is called once at stream end, after the caller has
	// guaranteed no timer race is possible. Returning true asks for a
	// final flush if the terminal still has content.
	Flush() bool
	// Dispose cancels any pending timer and drops the emit callback.
	// The strategy must not be used after Dispose.
	Dispose()
}

// Immediate never schedules a timer: lines are emitted strictly via
// the terminal's '\n'-triggered inline callback, plus one final flush
// at stream end.
type Immediate struct{}

// NewImmediate returns an Immediate strategy.
func NewImmediate() *Immediate {
	return &Immediate{}
}

func (*Immediate) SetEmitCallback(cb func())                       {}
func (*Immediate) OnWrite(term *Terminal, state TerminalState) bool { return false }
func (*Immediate) Flush() bool                                      { return true }
func (*Immediate) Dispose()                                          {}

// timerHandle is the arm/cancel bookkeeping shared by FixedTimeout and
// StatefulTimeout.
type timerHandle struct {
	emit  func()
	timer *time.Timer
}

func (h *timerHandle) SetEmitCallback(cb func()) {
	h.emit = cb
}

func (h *timerHandle) arm(d time.Duration) {
	h.cancel()
	emit := h.emit
	h.timer = time.AfterFunc(d, func() {
		if emit != nil {
			emit()
		}
	})
}

func (h *timerHandle) cancel() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

func (h *timerHandle) dispose() {
	h.cancel()
	h.emit = nil
}

// FixedTimeout flushes immediately on a newline but otherwise arms a
// fixed-duration timer after every write that left content in the
// line, coalescing bursts of printable characters into one flush.
type FixedTimeout struct {
	Timeout time.Duration
	timerHandle
}

// NewFixedTimeout returns a FixedTimeout strategy with the given
// coalescing window. The default per §4.E is 100ms.
func NewFixedTimeout(timeout time.Duration) *FixedTimeout {
	return &FixedTimeout{Timeout: timeout}
}

func (s *FixedTimeout) OnWrite(term *Terminal, state TerminalState) bool {
	s.cancel()
	if state.HadNewline {
		return true
	}
	if term.HasContent() {
		s.arm(s.Timeout)
	}
	return false
}

func (s *FixedTimeout) Flush() bool {
	s.cancel()
	return true
}

func (s *FixedTimeout) Dispose() {
	s.dispose()
}

// StatefulTimeout distinguishes a volatile write, one involving a
// carriage return, cursor motion, or erasure (the hallmark of a
// progress bar or spinner redrawing itself), from a stable plain-text
// write. Volatile writes arm the shorter VolatileTimeout; stable
// writes arm the longer StableTimeout. A newline always flushes
// immediately regardless of either timeout.
type StatefulTimeout struct {
	StableTimeout   time.Duration
	VolatileTimeout time.Duration
	timerHandle
}

// NewStatefulTimeout returns a StatefulTimeout strategy. Defaults per
// §4.E are VolatileTimeout=50ms, StableTimeout=200ms.
func NewStatefulTimeout(stable, volatile time.Duration) *StatefulTimeout {
	return &StatefulTimeout{StableTimeout: stable, VolatileTimeout: volatile}
}

func (s *StatefulTimeout) OnWrite(term *Terminal, state TerminalState) bool {
	s.cancel()
	if state.HadNewline {
		return true
	}
	if !term.HasContent() {
		return false
	}

	volatile := state.HadCarriageReturn || state.HadCursorMovement || state.HadErasure
	if volatile {
		s.arm(s.VolatileTimeout)
	} else {
		s.arm(s.StableTimeout)
	}
	return false
}

func (s *StatefulTimeout) Flush() bool {
	s.cancel()
	return true
}

func (s *StatefulTimeout) Dispose() {
	s.dispose()
}
