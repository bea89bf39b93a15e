package lineterm

// TokenKind identifies the variant carried by a Token.
type TokenKind int

const (
	// TokenNone is an ignored control byte (dropped silently).
	TokenNone TokenKind = iota
	// TokenControl is one of '\n', '\r', '\t', '\x08'.
	TokenControl
	// TokenCSI is a Control Sequence Introducer: ESC '[' params final.
	TokenCSI
	// TokenOSC is an Operating System Command, returned opaque and
	// ignored by the interpreter.
	TokenOSC
	// TokenEscape is a single-character ESC-introduced escape, or a
	// lone/unmatched ESC under the skip policy.
	TokenEscape
	// TokenPrintable is a single visible character.
	TokenPrintable
)

// Token is one unit produced by the tokenizer.
type Token struct {
	Kind   TokenKind
	Ch     rune   // Control, Escape (trailing char, 0 for a bare skipped ESC), Printable
	Params string // TokenCSI parameter string, unparsed
	Cmd    rune   // TokenCSI final byte
	Raw    string // TokenOSC payload
}

const esc = '\x1b'

// isRecognizedControl reports whether r is one of the control bytes
// recognized as TokenControl; everything else below 0x20 (other than ESC) is dropped as TokenNone.
func isRecognizedControl(r rune) bool {
	switch r {
	case '\n', '\r', '\t', '\x08':
		return true
	default:
		return false
	}
}

func isCSIParam(r rune) bool {
	return (r >= '0' && r <= '9') || r == ';'
}

func isCSIFinal(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == '`' || r == '@'
}

func isSingleEscape(r rune) bool {
	switch r {
	case '7', '8', '=', '>', 'H', 'M':
		return true
	default:
		return false
	}
}

func isOSCIntroducer(r rune) bool {
	switch r {
	case ']', 'P', '^', '_':
		return true
	default:
		return false
	}
}

// ParseNext inspects buf starting at pos and returns the token found
// there, the number of runes it consumes, and whether the sequence at
// pos is an incomplete trailing fragment (a lone ESC, or a CSI whose
// final byte hasn't arrived yet). When incomplete is true, the caller
// must stop tokenizing and carry buf[pos:] into the next chunk instead
// of consuming it as a token.
func ParseNext(buf []rune, pos int) (tok Token, length int, incomplete bool) {
	r := buf[pos]

	if r == esc {
		if pos+1 >= len(buf) {
			return Token{}, 0, true
		}

		next := buf[pos+1]

		switch {
		case next == '[':
			i := pos + 2
			for i < len(buf) && isCSIParam(buf[i]) {
				i++
			}
			if i >= len(buf) {
				return Token{}, 0, true
			}
			if isCSIFinal(buf[i]) {
				return Token{
					Kind:   TokenCSI,
					Params: string(buf[pos+2 : i]),
					Cmd:    buf[i],
				}, i - pos + 1, false
			}
			// Not a recognized final byte: skip just the ESC and
			// let the rest of the buffer be reprocessed.
			return Token{Kind: TokenEscape, Ch: 0}, 1, false

		case isOSCIntroducer(next):
			i := pos + 2
			for i < len(buf) {
				switch buf[i] {
				case '\a':
					return Token{Kind: TokenOSC, Raw: string(buf[pos+2 : i])}, i - pos + 1, false
				case esc:
					if i+1 < len(buf) && buf[i+1] == '\\' {
						return Token{Kind: TokenOSC, Raw: string(buf[pos+2 : i])}, i + 2 - pos, false
					}
					return Token{Kind: TokenOSC, Raw: string(buf[pos+2 : i])}, i - pos, false
				case '\n', '\r':
					return Token{Kind: TokenOSC, Raw: string(buf[pos+2 : i])}, i - pos, false
				}
				i++
			}
			// Ran off the end of the chunk: OSC is treated as
			// complete at chunk end, never buffered as incomplete.
			return Token{Kind: TokenOSC, Raw: string(buf[pos+2:])}, len(buf) - pos, false

		case isSingleEscape(next):
			return Token{Kind: TokenEscape, Ch: next}, 2, false

		default:
			return Token{Kind: TokenEscape, Ch: 0}, 1, false
		}
	}

	if isRecognizedControl(r) {
		return Token{Kind: TokenControl, Ch: r}, 1, false
	}

	if r >= ' ' || r > '\x7f' {
		return Token{Kind: TokenPrintable, Ch: r}, 1, false
	}

	return Token{Kind: TokenNone}, 1, false
}

// Tokenize scans buf to completion, returning the tokens recognized in
// order and any trailing incomplete fragment to prepend to the next
// chunk.
func Tokenize(buf []rune) (tokens []Token, leftover []rune) {
	pos := 0
	for pos < len(buf) {
		tok, n, incomplete := ParseNext(buf, pos)
		if incomplete {
			return tokens, buf[pos:]
		}
		if tok.Kind != TokenNone {
			tokens = append(tokens, tok)
		}
		pos += n
	}
	return tokens, nil
}
