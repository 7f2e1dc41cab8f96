// Package bytesize parses and prints human-readable byte quantities used in
// configuration files ("64Mi", "1.5GB", "4096").
package bytesize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ByteSize is a size in bytes.
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB

	KiB ByteSize = 1 << 10
	MiB ByteSize = 1 << 20
	GiB ByteSize = 1 << 30
)

var units = map[string]ByteSize{
	"":    B,
	"b":   B,
	"k":   KB,
	"kb":  KB,
	"m":   MB,
	"mb":  MB,
	"g":   GB,
	"gb":  GB,
	"ki":  KiB,
	"kib": KiB,
	"mi":  MiB,
	"mib": MiB,
	"gi":  GiB,
	"gib": GiB,
}

// Parse converts a string such as "16Mi" or "2.5MB" to a ByteSize.
// Unit suffixes are case-insensitive; a bare number is a byte count.
func Parse(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("bytesize: empty value")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	num, suffix := s, ""
	if split >= 0 {
		num, suffix = s[:split], strings.TrimSpace(s[split:])
	}

	mult, ok := units[strings.ToLower(suffix)]
	if !ok {
		return 0, fmt.Errorf("bytesize: unknown unit %q in %q", suffix, s)
	}

	if !strings.Contains(num, ".") {
		n, err := strconv.ParseUint(num, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bytesize: invalid number in %q", s)
		}
		if n > math.MaxUint64/uint64(mult) {
			return 0, fmt.Errorf("bytesize: %q overflows", s)
		}
		return ByteSize(n) * mult, nil
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("bytesize: invalid number in %q", s)
	}
	v := f * float64(mult)
	if v >= math.MaxUint64 {
		return 0, fmt.Errorf("bytesize: %q overflows", s)
	}
	return ByteSize(v), nil
}

// String prints the size with the largest binary unit that divides it
// exactly, falling back to a plain byte count.
func (b ByteSize) String() string {
	switch {
	case b == 0:
		return "0"
	case b%GiB == 0:
		return strconv.FormatUint(uint64(b/GiB), 10) + "Gi"
	case b%MiB == 0:
		return strconv.FormatUint(uint64(b/MiB), 10) + "Mi"
	case b%KiB == 0:
		return strconv.FormatUint(uint64(b/KiB), 10) + "Ki"
	default:
		return strconv.FormatUint(uint64(b), 10)
	}
}

// Int64 returns the size as an int64, saturating at math.MaxInt64.
func (b ByteSize) Int64() int64 {
	if uint64(b) > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(b)
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// MarshalYAML writes the size in its short string form.
func (b ByteSize) MarshalYAML() (any, error) {
	return b.String(), nil
}
