package shield

import (
	"strings"
	"unicode/utf8"
)

// Options are the parameters of a single masking call.
type Options struct {
	MinLength      int
	KeepStart      bool
	KeepStartCount int
	KeepEnd        bool
	KeepEndCount   int
	MaskToken      string
}

// Mask replaces the middle of value with repeated opts.MaskToken, keeping up to
// KeepStartCount leading and KeepEndCount trailing characters.
// Length is counted in runes, so multi-byte characters are never split.
//
// Values shorter than MinLength are returned unchanged. Negative counts keep
// nothing. When both regions are kept and together exceed the value, the
// excess is taken half from the start and half from the end, the end giving up
// the odd character.
func Mask(value string, opts Options) string {
	length := utf8.RuneCountInString(value)
	if length < opts.MinLength {
		return value
	}

	start := keepCount(opts.KeepStart, opts.KeepStartCount, length)
	end := keepCount(opts.KeepEnd, opts.KeepEndCount, length)

	if start+end > length {
		overlap := start + end - length
		start -= overlap / 2
		end -= overlap - overlap/2
	}

	masked := max(0, length-start-end)

	var b strings.Builder
	b.Grow(len(value) + masked*len(opts.MaskToken))

	if start > 0 {
		b.WriteString(value[:byteOffset(value, start)])
	}
	for range masked {
		b.WriteString(opts.MaskToken)
	}
	if end > 0 {
		b.WriteString(value[byteOffset(value, length-end):])
	}

	return b.String()
}

// keepCount resolves how many characters a region keeps: zero when the region
// is disabled or the count is negative, at most length otherwise.
func keepCount(keep bool, count, length int) int {
	if !keep || count <= 0 {
		return 0
	}
	return min(count, length)
}

// byteOffset returns the byte index of the n-th rune of s.
func byteOffset(s string, n int) int {
	if n <= 0 {
		return 0
	}
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}
