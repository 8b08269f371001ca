// Package numbering derives selectable sub-numbers from a line's title or id.
package numbering

import (
	"regexp"
	"strconv"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
)

// MaxOptions bounds how many sub-numbers a range may expand to.
const MaxOptions = 25

var rangePattern = regexp.MustCompile(`(\d{2,})\s*[-–—]\s*(\d{2,})`)

// ParseSubRange returns the first "N-M" range in text with M >= N and at most
// MaxOptions values, expanded inclusively. It returns an empty slice otherwise.
func ParseSubRange(text string) []string {
	for _, m := range rangePattern.FindAllStringSubmatch(text, -1) {
		start, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			continue
		}
		if end < start || end-start >= MaxOptions {
			continue
		}
		count := int(end-start) + 1
		out := make([]string, 0, count)
		for i := 0; i < count; i++ {
			out = append(out, strconv.FormatUint(start+uint64(i), 10))
		}
		return out
	}
	return []string{}
}

// LineOptions tries the title first, then the id.
func LineOptions(line *domain.Line) []string {
	if line == nil {
		return []string{}
	}
	for _, source := range []string{line.Title, line.ID} {
		if opts := ParseSubRange(source); len(opts) > 0 {
			return opts
		}
	}
	return []string{}
}

// Contains reports whether sip is one of the line's options.
func Contains(line *domain.Line, sip string) bool {
	for _, opt := range LineOptions(line) {
		if opt == sip {
			return true
		}
	}
	return false
}

// Rows chunks options into rows of size for keyboard layout.
func Rows(options []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	rows := [][]string{}
	for i := 0; i < len(options); i += size {
		end := i + size
		if end > len(options) {
			end = len(options)
		}
		rows = append(rows, options[i:end])
	}
	return rows
}
