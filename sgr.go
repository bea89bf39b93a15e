package lineterm

import (
	"strconv"
	"strings"
)

// boolAttr indexes the eight independent SGR boolean attributes in
// their fixed emission order.
type boolAttr int

const (
	attrBold boolAttr = iota
	attrDim
	attrItalic
	attrUnderline
	attrBlink
	attrInverse
	attrHidden
	attrStrike
	numBoolAttrs
)

// sgrCode is the SGR "set" code for each boolAttr, in emission order.
var sgrCode = [numBoolAttrs]int{1, 2, 3, 4, 5, 7, 8, 9}

// rgbFlag marks a color value as packed 24-bit RGB rather than a
// palette index: 0x0100_0000 | (r<<16) | (g<<8) | b.
const rgbFlag = 0x0100_0000

// Attributes is an SGR attribute record. Fields are independently
// "unset" (inherit) or explicitly set; an unset bool is distinct from
// one explicitly turned off. Use ParseSGR to build one from a CSI 'm'
// parameter list, Compose to merge two, and ToSequence to re-emit the
// minimal ANSI sequence that reproduces it.
type Attributes struct {
	fgSet bool
	fg    int32
	bgSet bool
	bg    int32

	// boolSet[a] reports whether attribute a has been explicitly
	// touched (set true or cleared false); boolVal[a] is only
	// meaningful when boolSet[a] is true.
	boolSet [numBoolAttrs]bool
	boolVal [numBoolAttrs]bool
}

// RGBColor packs r, g, b (each 0..255) into the spec's RGB color
// encoding (bit 24 set).
func RGBColor(r, g, b int) int {
	return rgbFlag | (r << 16) | (g << 8) | b
}

// IsEmpty reports whether no field of attrs is set.
func (a Attributes) IsEmpty() bool {
	if a.fgSet || a.bgSet {
		return false
	}
	for i := 0; i < int(numBoolAttrs); i++ {
		if a.boolSet[i] {
			return false
		}
	}
	return true
}

// Equal compares all ten fields, treating unset and explicitly-false
// as distinct.
func (a Attributes) Equal(b Attributes) bool {
	if a.fgSet != b.fgSet || (a.fgSet && a.fg != b.fg) {
		return false
	}
	if a.bgSet != b.bgSet || (a.bgSet && a.bg != b.bg) {
		return false
	}
	for i := 0; i < int(numBoolAttrs); i++ {
		if a.boolSet[i] != b.boolSet[i] {
			return false
		}
		if a.boolSet[i] && a.boolVal[i] != b.boolVal[i] {
			return false
		}
	}
	return true
}

func (a *Attributes) setBool(attr boolAttr, val bool) {
	a.boolSet[attr] = true
	a.boolVal[attr] = val
}

// ParseSGR parses a CSI 'm' parameter list (already split into ints by
// ClassifyCSI) into an attribute record. A bare or explicit 0
// immediately returns an empty record, discarding everything parsed
// before or after it.
func ParseSGR(params []int) Attributes {
	var a Attributes

	for i := 0; i < len(params); i++ {
		p := params[i]

		switch {
		case p == 0:
			return Attributes{}

		case p == 1:
			a.setBool(attrBold, true)
		case p == 2:
			a.setBool(attrDim, true)
		case p == 3:
			a.setBool(attrItalic, true)
		case p == 4:
			a.setBool(attrUnderline, true)
		case p == 5:
			a.setBool(attrBlink, true)
		case p == 7:
			a.setBool(attrInverse, true)
		case p == 8:
			a.setBool(attrHidden, true)
		case p == 9:
			a.setBool(attrStrike, true)

		case p == 22:
			a.setBool(attrBold, false)
			a.setBool(attrDim, false)
		case p == 23:
			a.setBool(attrItalic, false)
		case p == 24:
			a.setBool(attrUnderline, false)
		case p == 25:
			a.setBool(attrBlink, false)
		case p == 27:
			a.setBool(attrInverse, false)
		case p == 28:
			a.setBool(attrHidden, false)
		case p == 29:
			a.setBool(attrStrike, false)

		case p >= 30 && p <= 37:
			a.fgSet = true
			a.fg = int32(p - 30)
		case p == 38:
			if n, consumed := parseExtendedColor(params, i); consumed > 0 {
				a.fgSet = true
				a.fg = n
				i += consumed
			}
		case p == 39:
			a.fgSet = false

		case p >= 40 && p <= 47:
			a.bgSet = true
			a.bg = int32(p - 40)
		case p == 48:
			if n, consumed := parseExtendedColor(params, i); consumed > 0 {
				a.bgSet = true
				a.bg = n
				i += consumed
			}
		case p == 49:
			a.bgSet = false

		case p >= 90 && p <= 97:
			a.fgSet = true
			a.fg = int32(p - 90 + 8)
		case p >= 100 && p <= 107:
			a.bgSet = true
			a.bg = int32(p - 100 + 8)
		}
	}

	return a
}

// parseExtendedColor handles the "38;5;n" and "38;2;r;g;b" (and 48;...)
// forms starting at params[i] == 38 or 48. It returns the resolved
// color value and how many extra params (beyond the 38/48 itself)
// were consumed. A malformed/truncated extended color returns
// consumed == 0, leaving the attribute record unchanged.
func parseExtendedColor(params []int, i int) (int32, int) {
	if i+1 >= len(params) {
		return 0, 0
	}
	switch params[i+1] {
	case 5:
		if i+2 >= len(params) {
			return 0, 0
		}
		return int32(params[i+2]), 2
	case 2:
		if i+4 >= len(params) {
			return 0, 0
		}
		r, g, b := params[i+2], params[i+3], params[i+4]
		return int32(RGBColor(r, g, b)), 4
	default:
		return 0, 0
	}
}

// Compose merges overlay onto base: a field present in overlay wins,
// otherwise base's value carries through. Presence is tracked per
// field, so an overlay that only sets bold leaves base's colors and
// other bools untouched.
func Compose(base, overlay Attributes) Attributes {
	out := base

	if overlay.fgSet {
		out.fgSet = true
		out.fg = overlay.fg
	}
	if overlay.bgSet {
		out.bgSet = true
		out.bg = overlay.bg
	}
	for i := 0; i < int(numBoolAttrs); i++ {
		if overlay.boolSet[i] {
			out.boolSet[i] = true
			out.boolVal[i] = overlay.boolVal[i]
		}
	}
	return out
}

// ToSequence emits the minimal ANSI sequence that reproduces attrs:
// bool codes (in fixed order, true only), then fg, then bg, joined by
// ';' and wrapped as "ESC [ codes m". An empty record yields "".
func ToSequence(attrs Attributes) string {
	var codes []string

	for i := 0; i < int(numBoolAttrs); i++ {
		if attrs.boolSet[i] && attrs.boolVal[i] {
			codes = append(codes, strconv.Itoa(sgrCode[i]))
		}
	}

	if attrs.fgSet {
		codes = append(codes, colorCodes(attrs.fg, false)...)
	}
	if attrs.bgSet {
		codes = append(codes, colorCodes(attrs.bg, true)...)
	}

	if len(codes) == 0 {
		return ""
	}

	return "\x1b[" + strings.Join(codes, ";") + "m"
}

// colorCodes picks the narrowest SGR form for a color value: RGB if
// bit 24 is set, else the basic/bright palette code, else 256-color.
func colorCodes(c int32, bg bool) []string {
	if c&rgbFlag != 0 {
		r := (c >> 16) & 0xff
		g := (c >> 8) & 0xff
		b := c & 0xff
		base := 38
		if bg {
			base = 48
		}
		return []string{strconv.Itoa(base), "2", strconv.Itoa(int(r)), strconv.Itoa(int(g)), strconv.Itoa(int(b))}
	}

	switch {
	case c >= 0 && c <= 7:
		base := 30
		if bg {
			base = 40
		}
		return []string{strconv.Itoa(base + int(c))}
	case c >= 8 && c <= 15:
		base := 90
		if bg {
			base = 100
		}
		return []string{strconv.Itoa(base + int(c) - 8)}
	default:
		base := 38
		if bg {
			base = 48
		}
		return []string{strconv.Itoa(base), "5", strconv.Itoa(int(c))}
	}
}

