// Package lineterm implements a streaming ANSI terminal emulator for a
// single logical line.
//
// It ingests arbitrary chunks of decoded text produced by a child
// process (or any other producer mixing plain text and ANSI control
// sequences) and reconstructs finalized lines suitable for logging,
// prefixing, or display in a non-interactive viewer. Unlike a full
// screen emulator it tracks no rows, no scroll regions, and no
// scrollback: only the single line currently being written, the way a
// shell prompt overwrites itself with carriage returns while a
// progress bar animates.
//
// # Pipeline
//
// Four pieces compose the pipeline:
//
//   - [ParseNext] / [Tokenize]: split a chunk into [Token] values,
//     carrying any trailing incomplete escape sequence across chunk
//     boundaries.
//   - [ClassifyCSI]: parse a CSI token's parameter list and tag which
//     aspect of the line it touches (cursor, erasure, style).
//   - [Attributes] / [ParseSGR] / [Compose] / [ToSequence]: the SGR
//     (Select Graphic Rendition) attribute record, its merge rules,
//     and minimal re-emission.
//   - [Terminal]: the cell-based line model that tokens are applied
//     to, and that renders itself back to a minimal ANSI string via
//     [Terminal.RenderLine].
//
// [Strategy] implementations decide when a line is "done" and should
// be flushed, and [Adapter] drives a [Terminal] and a [Strategy] from a
// stream of chunks, exposing the output as a push callback, an event,
// a pushed stream, or a polling buffer.
//
// # Quick start
//
//	term := lineterm.NewTerminal()
//	ad := lineterm.NewAdapter(term, lineterm.NewImmediate(),
//	    lineterm.WithPushCallback(func(line string) {
//	        fmt.Println(line)
//	    }),
//	)
//	ad.WriteChunk("\x1b[31mhello\x1b[0m\n")
//	ad.Close()
package lineterm
