package keycodec

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Format selects how the raw bytes of a key are rendered for humans. It is a
// presentation concern only.
type Format int

const (
	// FormatCompact renders "0x" followed by uppercase hex with an underscore
	// between the bytes of consecutive fields, e.g. 0x0000000000000005_80000001.
	FormatCompact Format = iota
	// FormatStandard renders the bytes the way fmt prints a []byte.
	FormatStandard
	// FormatLowerHex renders contiguous lowercase hex.
	FormatLowerHex
	// FormatUpperHex renders contiguous uppercase hex.
	FormatUpperHex
	// FormatPrettyLowerHex renders a bracketed list such as [0x0a, 0xff].
	FormatPrettyLowerHex
	// FormatPrettyUpperHex renders a bracketed list such as [0x0A, 0xFF].
	FormatPrettyUpperHex
)

var formatNames = map[Format]string{
	FormatCompact:        "compact",
	FormatStandard:       "std",
	FormatLowerHex:       "lower_hex",
	FormatUpperHex:       "upper_hex",
	FormatPrettyLowerHex: "pretty_lower_hex",
	FormatPrettyUpperHex: "pretty_upper_hex",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// ParseFormat parses a format name. The empty string selects FormatCompact.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatCompact, nil
	}
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// ParseHex reads a key rendered as contiguous or compact hexadecimal. An
// optional 0x prefix and underscores are ignored. Input of the wrong length is
// padded or truncated like FromBytes.
func (d *Descriptor) ParseHex(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	raw, err := hex.DecodeString(strings.ReplaceAll(s, "_", ""))
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return d.FromBytes(raw), nil
}

// ParseHexExact is ParseHex for input that must hold exactly Width bytes.
func (d *Descriptor) ParseHexExact(s string) (Key, error) {
	k, err := d.ParseHex(s)
	if err != nil {
		return Key{}, err
	}
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if n := len(strings.ReplaceAll(s, "_", "")); n != 2*d.width {
		return Key{}, fmt.Errorf("%w: want %d bytes of hex, got %d digits", ErrInvalidFormat, d.width, n)
	}
	return k, nil
}

// Render formats the raw bytes of k.
func (k Key) Render(f Format) string {
	switch f {
	case FormatStandard:
		return fmt.Sprint(k.buf)
	case FormatLowerHex:
		return hex.EncodeToString(k.buf)
	case FormatUpperHex:
		return strings.ToUpper(hex.EncodeToString(k.buf))
	case FormatPrettyLowerHex:
		return prettyHex(k.buf, "0x%02x")
	case FormatPrettyUpperHex:
		return prettyHex(k.buf, "0x%02X")
	}
	return k.compact()
}

func (k Key) compact() string {
	var sb strings.Builder
	sb.Grow(2 + 2*len(k.buf) + len(k.desc.fields))
	sb.WriteString("0x")
	for i := range k.desc.fields {
		f := &k.desc.fields[i]
		if i > 0 {
			sb.WriteByte('_')
		}
		fmt.Fprintf(&sb, "%X", k.buf[f.Offset:f.End()])
	}
	return sb.String()
}

func prettyHex(b []byte, verb string) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf(verb, c)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// String renders k in FormatCompact.
func (k Key) String() string {
	if k.desc == nil {
		return "<nil key>"
	}
	return k.compact()
}

// Format implements fmt.Formatter. %x and %X print contiguous hex, %v and %s
// the compact form, and %+v the decoded fields next to the compact form.
func (k Key) Format(s fmt.State, verb rune) {
	if k.desc == nil {
		fmt.Fprint(s, "<nil key>")
		return
	}
	switch verb {
	case 'x':
		fmt.Fprint(s, k.Render(FormatLowerHex))
	case 'X':
		fmt.Fprint(s, k.Render(FormatUpperHex))
	case 'v':
		if s.Flag('+') {
			fmt.Fprint(s, k.debug())
			return
		}
		fmt.Fprint(s, k.compact())
	default:
		fmt.Fprint(s, k.compact())
	}
}

func (k Key) debug() string {
	var sb strings.Builder
	sb.WriteString(k.desc.name)
	sb.WriteString(" { ")
	for i := range k.desc.fields {
		f := &k.desc.fields[i]
		fmt.Fprintf(&sb, "%s: %s, ", f.Name, k.Get(i))
	}
	sb.WriteString("raw: ")
	sb.WriteString(k.compact())
	sb.WriteString(" }")
	return sb.String()
}
