package lineterm

// maxColumn bounds how far a single line can grow under forward
// cursor motion, so a runaway "\x1b[999999999C" can't exhaust memory.
// Columns beyond it are silently dropped, per spec.
const maxColumn = 1_000_000

// Cell is one column of the current line: either Empty (erased, or a
// gap left by forward cursor motion) or a glyph holding the character
// written there and the SGR attributes active at the time.
type Cell struct {
	Empty bool
	Char  rune
	SGR   Attributes
}

// TerminalState summarizes what a single Write call did. Flags are
// cleared at the start of each Write and are the OR of every token
// processed during that call.
type TerminalState struct {
	HadNewline         bool
	HadCarriageReturn  bool
	HadCursorMovement  bool
	HadErasure         bool
	CursorPosition     int
	CellCount          int
}

// Terminal holds one logical line: its cells, cursor, active SGR
// state, saved cursor, and any incomplete escape sequence carried
// across chunk boundaries. It is not thread-safe: callers must
// serialize Write, RenderLine, Reset, and any line-ready callback
// themselves (Adapter does so with its mutex, since a strategy timer
// flushes from its own goroutine).
type Terminal struct {
	cells       []Cell
	cursor      int
	activeSGR   Attributes
	savedCursor int
	incomplete  []rune
	onLineReady func()
}

// NewTerminal creates an empty terminal: cursor at 0, no cells, no
// active SGR, no saved cursor.
func NewTerminal() *Terminal {
	return &Terminal{}
}

// SetLineReadyCallback installs the function invoked synchronously,
// from within Write, the moment a '\n' control token is processed.
func (t *Terminal) SetLineReadyCallback(cb func()) {
	t.onLineReady = cb
}

// Cursor returns the current 0-based cursor column.
func (t *Terminal) Cursor() int {
	return t.cursor
}

// HasContent reports whether the line holds any cells at all.
func (t *Terminal) HasContent() bool {
	return len(t.cells) > 0
}

// Write processes chunk, applying every token it contains (plus any
// fragment carried over from a previous Write) and returns a summary
// of what happened.
func (t *Terminal) Write(chunk string) TerminalState {
	var state TerminalState

	full := append(t.incomplete, []rune(chunk)...)
	t.incomplete = nil

	tokens, leftover := Tokenize(full)
	t.incomplete = leftover

	for _, tok := range tokens {
		t.apply(tok, &state)
	}

	state.CursorPosition = t.cursor
	state.CellCount = len(t.cells)
	return state
}

func (t *Terminal) apply(tok Token, state *TerminalState) {
	switch tok.Kind {
	case TokenPrintable:
		t.writeGlyph(tok.Ch)

	case TokenControl:
		switch tok.Ch {
		case '\r':
			t.cursor = 0
			state.HadCarriageReturn = true
		case '\n':
			state.HadNewline = true
			if t.onLineReady != nil {
				t.onLineReady()
			}
		case '\x08':
			if t.cursor > 0 {
				t.cursor--
			}
			state.HadCursorMovement = true
		case '\t':
			t.applyTab()
		}

	case TokenCSI:
		t.applyCSI(tok, state)

	case TokenEscape:
		switch tok.Ch {
		case '7':
			t.savedCursor = t.cursor
			state.HadCursorMovement = true
		case '8':
			t.cursor = t.savedCursor
			state.HadCursorMovement = true
		}

	case TokenOSC, TokenNone:
		// Ignored: no OSC payload semantics, no effect from dropped bytes.
	}
}

func (t *Terminal) writeGlyph(ch rune) {
	if t.cursor >= maxColumn {
		return
	}
	t.ensureLen(t.cursor + 1)
	t.cells[t.cursor] = Cell{Char: ch, SGR: t.activeSGR}
	t.cursor++
}

func (t *Terminal) applyTab() {
	next := (t.cursor/8 + 1) * 8
	if next > maxColumn {
		next = maxColumn
	}
	t.ensureLen(next)
	for i := t.cursor; i < next; i++ {
		t.cells[i] = Cell{Char: ' ', SGR: t.activeSGR}
	}
	t.cursor = next
}

func (t *Terminal) applyCSI(tok Token, state *TerminalState) {
	csi := ClassifyCSI(tok.Params, tok.Cmd)

	if csi.Affects.Cursor {
		state.HadCursorMovement = true
	}
	if csi.Affects.Erasure {
		state.HadErasure = true
	}

	switch csi.Cmd {
	case 'm':
		t.activeSGR = Compose(t.activeSGR, ParseSGR(csi.Params))

	case 'G', '`':
		n := paramOr(csi.Params, 1)
		t.cursor = clampCursor(n - 1)
		t.ensureLen(t.cursor)

	case 'C':
		t.cursor = clampCursor(t.cursor + paramOr(csi.Params, 1))
		t.ensureLen(t.cursor)

	case 'D':
		n := t.cursor - paramOr(csi.Params, 1)
		if n < 0 {
			n = 0
		}
		t.cursor = n

	case 'K':
		switch param(csi.Params) {
		case 0:
			if t.cursor < len(t.cells) {
				t.cells = t.cells[:t.cursor]
			}
		case 1:
			t.ensureLen(t.cursor + 1)
			for i := 0; i <= t.cursor; i++ {
				t.cells[i] = Cell{Empty: true}
			}
		case 2:
			t.cells = nil
			t.cursor = 0
		}

	case 'X':
		n := paramOr(csi.Params, 1)
		t.ensureLen(t.cursor + n)
		for i := t.cursor; i < t.cursor+n && i < len(t.cells); i++ {
			t.cells[i] = Cell{Empty: true}
		}

	case 'P':
		n := paramOr(csi.Params, 1)
		if t.cursor < len(t.cells) {
			end := t.cursor + n
			if end > len(t.cells) {
				end = len(t.cells)
			}
			t.cells = append(t.cells[:t.cursor], t.cells[end:]...)
		}

	case '@':
		n := paramOr(csi.Params, 1)
		if t.cursor <= len(t.cells) {
			maxGap := maxColumn - len(t.cells)
			if maxGap < 0 {
				maxGap = 0
			}
			if n > maxGap {
				n = maxGap
			}
			gap := make([]Cell, n)
			for i := range gap {
				gap[i] = Cell{Empty: true}
			}
			tail := append([]Cell{}, t.cells[t.cursor:]...)
			t.cells = append(append(t.cells[:t.cursor], gap...), tail...)
		}

	case 's':
		t.savedCursor = t.cursor

	case 'u':
		t.cursor = t.savedCursor

	default:
		// A, B, H, f, J, S, T, L, M and anything else: no-op.
	}
}

func clampCursor(n int) int {
	if n < 0 {
		return 0
	}
	if n > maxColumn {
		return maxColumn
	}
	return n
}

// ensureLen grows cells with Empty entries so it has at least n
// elements, bounded by maxColumn.
func (t *Terminal) ensureLen(n int) {
	if n > maxColumn {
		n = maxColumn
	}
	for len(t.cells) < n {
		t.cells = append(t.cells, Cell{Empty: true})
	}
}

// RenderLine walks the current cells and returns the minimal
// ANSI-armored string that reproduces them: SGR transitions only where
// the attributes actually change, trailing filler spaces trimmed.
func (t *Terminal) RenderLine() string {
	last := -1
	for i, c := range t.cells {
		if !c.Empty {
			last = i
		}
	}
	if last < 0 {
		return ""
	}

	var out []byte
	lastSGR := Attributes{}
	lastWasEmpty := true

	for i := 0; i <= last; i++ {
		c := t.cells[i]
		if c.Empty {
			if !lastWasEmpty {
				out = append(out, "\x1b[0m"...)
				lastSGR = Attributes{}
				lastWasEmpty = true
			}
			out = append(out, ' ')
			continue
		}

		if !c.SGR.Equal(lastSGR) {
			switch {
			case c.SGR.IsEmpty():
				out = append(out, "\x1b[0m"...)
			case !lastWasEmpty:
				out = append(out, "\x1b[0m"...)
				out = append(out, ToSequence(c.SGR)...)
			default:
				out = append(out, ToSequence(c.SGR)...)
			}
			lastSGR = c.SGR
			lastWasEmpty = c.SGR.IsEmpty()
		}
		out = append(out, string(c.Char)...)
	}

	if !lastWasEmpty {
		out = append(out, "\x1b[0m"...)
	}

	return trimTrailingFiller(string(out))
}

// trimTrailingFiller strips trailing filler spaces, keeping a terminal
// reset sequence if present. Inner spaces are never touched.
func trimTrailingFiller(s string) string {
	const reset = "\x1b[0m"
	if len(s) >= len(reset) && s[len(s)-len(reset):] == reset {
		body := s[:len(s)-len(reset)]
		return trimRightSpaces(body) + reset
	}
	return trimRightSpaces(s)
}

func trimRightSpaces(s string) string {
	i := len(s)
	for i > 0 && s[i-1] == ' ' {
		i--
	}
	return s[:i]
}

// Reset clears the line's cells and cursor but preserves the active SGR
// state and the saved cursor, which survive across lines.
func (t *Terminal) Reset() {
	t.cells = nil
	t.cursor = 0
}

// Dispose clears everything, including the incomplete-sequence
// buffer and active SGR. The terminal should not be written to again
// afterward.
func (t *Terminal) Dispose() {
	t.cells = nil
	t.cursor = 0
	t.activeSGR = Attributes{}
	t.savedCursor = 0
	t.incomplete = nil
	t.onLineReady = nil
}
