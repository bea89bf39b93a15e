package lineterm

import "testing"

func TestTerminalPrintableAppends(t *testing.T) {
	term := NewTerminal()
	term.Write("hello")
	if got := term.RenderLine(); got != "hello" {
		t.Fatalf("RenderLine() = %q, want %q", got, "hello")
	}
	if term.Cursor() != 5 {
		t.Fatalf("Cursor() = %d, want 5", term.Cursor())
	}
}

func TestTerminalCarriageReturnOverwrite(t *testing.T) {
	term := NewTerminal()
	term.Write("10%\r")
	term.Write("100%")
	if got := term.RenderLine(); got != "100%" {
		t.Fatalf("RenderLine() = %q, want %q", got, "100%")
	}
}

func TestTerminalSplitCSIAcrossWrites(t *testing.T) {
	term := NewTerminal()
	term.Write("plain\x1b[3")
	term.Write("1mred\x1b[0m")
	if got := term.RenderLine(); got != "plain\x1b[31mred\x1b[0m" {
		t.Fatalf("RenderLine() = %q", got)
	}
}

func TestTerminalSaveRestoreCursor(t *testing.T) {
	term := NewTerminal()
	term.Write("ABCDEF\x1b[s")
	term.Write("\x1b[3D123\x1b[u")
	term.Write("!")
	if got := term.RenderLine(); got != "ABC123!" {
		t.Fatalf("RenderLine() = %q", got)
	}
}

func TestTerminalEraseToEndOfLine(t *testing.T) {
	term := NewTerminal()
	term.Write("ABCDEFGH")
	term.Write("\x1b[4G\x1b[K")
	if got := term.RenderLine(); got != "ABC" {
		t.Fatalf("RenderLine() = %q, want %q", got, "ABC")
	}
	if term.Cursor() != 3 {
		t.Fatalf("Cursor() = %d, want 3", term.Cursor())
	}
}

func TestTerminalEraseStartToCursor(t *testing.T) {
	term := NewTerminal()
	term.Write("ABCDEFGH")
	term.Write("\x1b[5G\x1b[1K")
	if got := term.RenderLine(); got != "     FGH" {
		t.Fatalf("RenderLine() = %q, want %q", got, "     FGH")
	}
	if term.Cursor() != 4 {
		t.Fatalf("Cursor() = %d, want 4", term.Cursor())
	}
}

func TestTerminalTabAlignment(t *testing.T) {
	term := NewTerminal()
	term.Write("A\tB")
	got := term.RenderLine()
	want := "A       B"
	if got != want {
		t.Fatalf("RenderLine() = %q, want %q", got, want)
	}
}

func TestTerminalSGRCarriesAcrossLines(t *testing.T) {
	term := NewTerminal()
	var lines []string
	term.SetLineReadyCallback(func() {
		lines = append(lines, term.RenderLine())
		term.Reset()
	})
	term.Write("\x1b[31mred\n")
	term.Write("still red\n")

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "\x1b[31mred\x1b[0m" {
		t.Fatalf("lines[0] = %q", lines[0])
	}
	if lines[1] != "\x1b[31mstill red\x1b[0m" {
		t.Fatalf("lines[1] = %q", lines[1])
	}
}

func TestTerminalBackspace(t *testing.T) {
	term := NewTerminal()
	term.Write("AB\x08X")
	if got := term.RenderLine(); got != "AX" {
		t.Fatalf("RenderLine() = %q, want %q", got, "AX")
	}
}

func TestTerminalDeleteChars(t *testing.T) {
	term := NewTerminal()
	term.Write("ABCDEF\x1b[3D\x1b[2P")
	if got := term.RenderLine(); got != "ABCF" {
		t.Fatalf("RenderLine() = %q, want %q", got, "ABCF")
	}
}

func TestTerminalInsertBlankChars(t *testing.T) {
	term := NewTerminal()
	term.Write("ABCDEF\x1b[4D\x1b[2@")
	if got := term.RenderLine(); got != "AB  CDEF" {
		t.Fatalf("RenderLine() = %q, want %q", got, "AB  CDEF")
	}
}

func TestTerminalSelectiveEraseX(t *testing.T) {
	term := NewTerminal()
	term.Write("ABCDEF\x1b[2D\x1b[1X")
	got := term.RenderLine()
	want := "ABCD F"
	if got != want {
		t.Fatalf("RenderLine() = %q, want %q", got, want)
	}
	if term.Cursor() != 4 {
		t.Fatalf("Cursor() = %d, want 4", term.Cursor())
	}
}

func TestTerminalEraseAll(t *testing.T) {
	term := NewTerminal()
	term.Write("ABCDEF\x1b[2K")
	if got := term.RenderLine(); got != "" {
		t.Fatalf("RenderLine() = %q, want empty", got)
	}
	if term.HasContent() {
		t.Fatal("HasContent() = true after full erase")
	}
}

func TestTerminalCursorGotoExtendsCellsToInvariant(t *testing.T) {
	term := NewTerminal()
	state := term.Write("\x1b[50G")
	if state.CursorPosition != 49 {
		t.Fatalf("CursorPosition = %d, want 49", state.CursorPosition)
	}
	if state.CellCount < state.CursorPosition {
		t.Fatalf("CellCount = %d < CursorPosition = %d, violates 0<=cursor<=cells.len()", state.CellCount, state.CursorPosition)
	}
}

func TestTerminalCursorForwardExtendsCellsToInvariant(t *testing.T) {
	term := NewTerminal()
	term.Write("AB")
	state := term.Write("\x1b[10C")
	if state.CellCount < state.CursorPosition {
		t.Fatalf("CellCount = %d < CursorPosition = %d, violates 0<=cursor<=cells.len()", state.CellCount, state.CursorPosition)
	}
}

func TestTerminalInsertBlankCharsClampsToMaxColumn(t *testing.T) {
	term := NewTerminal()
	term.Write("AB")
	state := term.Write("\x1b[999999999@")
	if state.CellCount > maxColumn {
		t.Fatalf("CellCount = %d, want <= maxColumn (%d)", state.CellCount, maxColumn)
	}
}

func TestTerminalDisposeClearsEverything(t *testing.T) {
	term := NewTerminal()
	term.Write("\x1b[31mred")
	term.Dispose()
	term.Write("x")
	if got := term.RenderLine(); got != "x" {
		t.Fatalf("RenderLine() = %q, want %q (no style should survive Dispose)", got, "x")
	}
}
