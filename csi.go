package lineterm

import "strconv"

// CSIAffects tags which aspects of the line a CSI command touches.
// The emission strategies (Strategy) use these to distinguish volatile
// lines (under cursor motion or erasure) from stable plain text.
type CSIAffects struct {
	Cursor  bool
	Erasure bool
	Style   bool
}

// CSI is a parsed Control Sequence Introducer: its command byte, its
// numeric parameters, and which line aspects it affects.
type CSI struct {
	Cmd     rune
	Params  []int
	Affects CSIAffects
}

// ClassifyCSI parses a CSI token's raw parameter string and command
// byte into a CSI record. A blank or non-numeric parameter field
// becomes 0; an entirely empty parameter string yields a single 0
// parameter.
func ClassifyCSI(params string, cmd rune) CSI {
	return CSI{
		Cmd:     cmd,
		Params:  parseCSIParams(params),
		Affects: classifyAffects(cmd),
	}
}

func parseCSIParams(params string) []int {
	if params == "" {
		return []int{0}
	}

	fields := splitParams(params)
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			n = 0
		}
		out[i] = n
	}
	return out
}

// splitParams splits on ';' without allocating via strings.Split's
// generic path for the common single-field case.
func splitParams(s string) []string {
	var fields []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			fields = append(fields, s[start:i])
			start = i + 1
		}
	}
	fields = append(fields, s[start:])
	return fields
}

func classifyAffects(cmd rune) CSIAffects {
	switch cmd {
	case 'm':
		return CSIAffects{Style: true}
	case 'G', 'C', 'D', '`', 's', 'u':
		return CSIAffects{Cursor: true}
	case 'K', 'X', 'P', '@':
		return CSIAffects{Erasure: true}
	default:
		return CSIAffects{}
	}
}

// paramOr returns params[0] if present and non-zero, else def. This is
// the "n || default" shorthand used throughout the cursor-motion and
// erasure CSI handlers.
func paramOr(params []int, def int) int {
	if len(params) == 0 || params[0] == 0 {
		return def
	}
	return params[0]
}

// param returns params[0] if present, else 0.
func param(params []int) int {
	if len(params) == 0 {
		return 0
	}
	return params[0]
}
