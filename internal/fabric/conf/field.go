package conf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/fabmesh-go/internal/core/domain"
)

// Type tags a field's value format. The tag governs both parsing and
// stringification.
type Type int

const (
	// TypeString is an uninterpreted string.
	TypeString Type = iota
	// TypeUint is an unsigned integer, optionally with a K/M/G/T binary
	// suffix (e.g. "64K" = 65536).
	TypeUint
	// TypeBool accepts true/false, yes/no, on/off.
	TypeBool
	// TypeTime is a duration in Go syntax (e.g. "90ns", "1.5s").
	TypeTime
	// TypeBits is a bitmask given as a comma-separated list of names from
	// the field's Bits map.
	TypeBits
)

// String returns the type tag name.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeUint:
		return "uint"
	case TypeBool:
		return "bool"
	case TypeTime:
		return "time"
	case TypeBits:
		return "bits"
	default:
		return "invalid"
	}
}

// Field describes one configuration option in a component's field table.
type Field struct {
	// Name is the option name, unique within its table (e.g.
	// "RCACHE_OVERHEAD"). Lookups are by exact name.
	Name string

	// Default is the literal parsed when no source overrides the option.
	Default string

	// Doc describes the option for help output.
	Doc string

	// Type governs parse and stringify format.
	Type Type

	// Bits maps bit names to their values. Required for TypeBits.
	Bits map[string]uint64
}

// parseValue parses raw according to the field's type tag.
func (f Field) parseValue(raw string) (any, error) {
	switch f.Type {
	case TypeString:
		return raw, nil

	case TypeUint:
		return parseUint(raw)

	case TypeBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
		return nil, fmt.Errorf("invalid boolean %q", raw)

	case TypeTime:
		d, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		return d, nil

	case TypeBits:
		return f.parseBits(raw)

	default:
		return nil, fmt.Errorf("invalid type tag %d", f.Type)
	}
}

// formatValue stringifies a previously parsed value in canonical form.
func (f Field) formatValue(v any) string {
	switch f.Type {
	case TypeString:
		return v.(string)
	case TypeUint:
		return strconv.FormatUint(v.(uint64), 10)
	case TypeBool:
		return strconv.FormatBool(v.(bool))
	case TypeTime:
		return v.(time.Duration).String()
	case TypeBits:
		return f.formatBits(v.(uint64))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (f Field) parseBits(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	var mask uint64
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		bit, ok := f.Bits[name]
		if !ok {
			return 0, fmt.Errorf("unknown bit name %q", name)
		}
		mask |= bit
	}
	return mask, nil
}

// formatBits emits set bit names ordered by bit value so that the output is
// stable regardless of map iteration order.
func (f Field) formatBits(mask uint64) string {
	type bit struct {
		name  string
		value uint64
	}
	bits := make([]bit, 0, len(f.Bits))
	for name, value := range f.Bits {
		bits = append(bits, bit{name, value})
	}
	sort.Slice(bits, func(i, j int) bool { return bits[i].value < bits[j].value })

	var set []string
	for _, b := range bits {
		if mask&b.value == b.value && b.value != 0 {
			set = append(set, b.name)
		}
	}
	return strings.Join(set, ",")
}

// parseUint parses a non-negative integer with an optional binary suffix.
func parseUint(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	mult := uint64(1)

	if len(raw) > 1 {
		switch raw[len(raw)-1] {
		case 'K', 'k':
			mult = 1 << 10
		case 'M', 'm':
			mult = 1 << 20
		case 'G', 'g':
			mult = 1 << 30
		case 'T', 't':
			mult = 1 << 40
		}
		if mult != 1 {
			raw = raw[:len(raw)-1]
		}
	}

	n, err := strconv.ParseUint(raw, 0, 64)
	if err != nil {
		return 0, err
	}
	return n * mult, nil
}

// findField scans a table for a field by exact name.
func findField(table []Field, name string) (Field, bool) {
	for _, f := range table {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// parseErr wraps a field parse failure with option context.
func parseErr(prefix, name string, err error) error {
	return domain.ErrOptionParse.
		WithDetails(fmt.Sprintf("option %s%s", prefix, name)).
		WithCause(err)
}
