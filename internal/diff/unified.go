// Package diff computes and applies line-based unified diffs.
//
// Line matching is delegated to diffmatchpatch over one rune per line; this package
// turns the resulting edit script into hunks with surrounding context in the
// familiar `diff -u` layout. Everything here is pure: no I/O, no state.
package diff

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ContextLines is the number of unchanged lines kept around each change.
const ContextLines = 3

const noNewlineMarker = `\ No newline at end of file`

type op struct {
	kind byte // ' ', '-', '+'
	text string
}

// Unified returns a unified diff of original against proposed, labelled
// a/<label> and b/<label>. An empty string means the documents are identical.
func Unified(original, proposed, label string) string {
	if original == proposed {
		return ""
	}

	ops := lineOps(original, proposed)
	hunks := groupHunks(ops, ContextLines)
	if len(hunks) == 0 {
		return ""
	}

	// prefix counts of old/new lines consumed before op i
	oldBefore := make([]int, len(ops)+1)
	newBefore := make([]int, len(ops)+1)
	for i, o := range ops {
		oldBefore[i+1] = oldBefore[i]
		newBefore[i+1] = newBefore[i]
		if o.kind != '+' {
			oldBefore[i+1]++
		}
		if o.kind != '-' {
			newBefore[i+1]++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", label, label)
	for _, h := range hunks {
		oldLen := oldBefore[h.end] - oldBefore[h.start]
		newLen := newBefore[h.end] - newBefore[h.start]
		fmt.Fprintf(&b, "@@ -%s +%s @@\n",
			formatRange(oldBefore[h.start], oldLen),
			formatRange(newBefore[h.start], newLen))
		for _, o := range ops[h.start:h.end] {
			b.WriteByte(o.kind)
			b.WriteString(o.text)
			if !strings.HasSuffix(o.text, "\n") {
				b.WriteString("\n")
				b.WriteString(noNewlineMarker)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// Stat counts added and removed lines in a unified diff.
func Stat(unified string) (added, removed int) {
	inHunk := false
	for _, line := range strings.Split(unified, "\n") {
		if strings.HasPrefix(line, "@@") {
			inHunk = true
			continue
		}
		if !inHunk || line == "" {
			continue
		}
		switch line[0] {
		case '+':
			added++
		case '-':
			removed++
		}
	}
	return added, removed
}

// Apply replays the hunks of unified onto original and returns the result.
// It fails when a context or removed line does not match original.
func Apply(original, unified string) (string, error) {
	if unified == "" {
		return original, nil
	}

	src := splitLines(original)
	lines := splitLines(unified)
	var out strings.Builder
	pos := 0 // next unconsumed line of src

	i := 0
	for i < len(lines) && !strings.HasPrefix(lines[i], "@@") {
		i++
	}

	for i < len(lines) {
		oldStart, oldLen, err := parseHunkHeader(lines[i])
		if err != nil {
			return "", err
		}
		i++

		// a zero-length range names the line before the insertion point
		target := oldStart - 1
		if oldLen == 0 {
			target = oldStart
		}
		if target < pos || target > len(src) {
			return "", fmt.Errorf("hunk at line %d out of order", oldStart)
		}
		for ; pos < target; pos++ {
			out.WriteString(src[pos])
		}

		for i < len(lines) && !strings.HasPrefix(lines[i], "@@") {
			line := lines[i]
			i++
			if line == "" || line[0] == '\\' {
				continue
			}
			text := line[1:]
			if i < len(lines) && strings.HasPrefix(lines[i], `\`) {
				text = strings.TrimSuffix(text, "\n")
			}
			switch line[0] {
			case ' ', '-':
				if pos >= len(src) || src[pos] != text {
					return "", fmt.Errorf("hunk mismatch at line %d", pos+1)
				}
				pos++
				if line[0] == ' ' {
					out.WriteString(text)
				}
			case '+':
				out.WriteString(text)
			default:
				return "", fmt.Errorf("unexpected diff line %q", strings.TrimSuffix(line, "\n"))
			}
		}
	}

	for ; pos < len(src); pos++ {
		out.WriteString(src[pos])
	}
	return out.String(), nil
}

func lineOps(original, proposed string) []op {
	a, b, lines, ok := linesToRunes(splitLines(original), splitLines(proposed))
	if !ok {
		return replaceAll(original, proposed)
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(a, b, false)

	var ops []op
	for _, d := range diffs {
		var kind byte
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			kind = ' '
		case diffmatchpatch.DiffDelete:
			kind = '-'
		case diffmatchpatch.DiffInsert:
			kind = '+'
		}
		for _, r := range d.Text {
			ops = append(ops, op{kind: kind, text: lines[lineIndex(r)]})
		}
	}
	return ops
}

// maxLineRunes bounds the distinct lines one diff can encode: every rune
// value past the surrogate block.
const maxLineRunes = utf8.MaxRune - 0x800

// linesToRunes encodes each distinct line as one valid rune so the diff runs
// over whole lines. The rune values survive the string round trip inside
// diffmatchpatch, which a numeric encoding does not.
func linesToRunes(a, b []string) (ra, rb []rune, lines []string, ok bool) {
	index := make(map[string]rune)
	encode := func(src []string) []rune {
		out := make([]rune, len(src))
		for i, line := range src {
			r, seen := index[line]
			if !seen {
				r = lineRune(len(lines))
				index[line] = r
				lines = append(lines, line)
			}
			out[i] = r
		}
		return out
	}
	ra = encode(a)
	rb = encode(b)
	return ra, rb, lines, len(lines) <= maxLineRunes
}

func lineRune(i int) rune {
	r := rune(i)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}

func lineIndex(r rune) int {
	if r >= 0xE000 {
		r -= 0x800
	}
	return int(r)
}

func replaceAll(original, proposed string) []op {
	var ops []op
	for _, line := range splitLines(original) {
		ops = append(ops, op{kind: '-', text: line})
	}
	for _, line := range splitLines(proposed) {
		ops = append(ops, op{kind: '+', text: line})
	}
	return ops
}

type hunk struct {
	start, end int // op indexes, end exclusive
}

func groupHunks(ops []op, context int) []hunk {
	var hunks []hunk
	for i, o := range ops {
		if o.kind == ' ' {
			continue
		}
		start := max(0, i-context)
		end := min(len(ops), i+1+context)
		if n := len(hunks); n > 0 && start <= hunks[n-1].end {
			hunks[n-1].end = max(hunks[n-1].end, end)
			continue
		}
		hunks = append(hunks, hunk{start: start, end: end})
	}
	return hunks
}

// formatRange follows the GNU convention: a single line omits the length and
// an empty range points at the line before.
func formatRange(before, length int) string {
	switch length {
	case 0:
		return fmt.Sprintf("%d,0", before)
	case 1:
		return strconv.Itoa(before + 1)
	default:
		return fmt.Sprintf("%d,%d", before+1, length)
	}
}

func parseHunkHeader(line string) (start, length int, err error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || fields[0] != "@@" || !strings.HasPrefix(fields[1], "-") {
		return 0, 0, fmt.Errorf("malformed hunk header %q", strings.TrimSpace(line))
	}
	oldRange := strings.TrimPrefix(fields[1], "-")
	length = 1
	if startStr, lenStr, ok := strings.Cut(oldRange, ","); ok {
		oldRange = startStr
		if length, err = strconv.Atoi(lenStr); err != nil {
			return 0, 0, fmt.Errorf("malformed hunk header %q: %w", strings.TrimSpace(line), err)
		}
	}
	if start, err = strconv.Atoi(oldRange); err != nil {
		return 0, 0, fmt.Errorf("malformed hunk header %q: %w", strings.TrimSpace(line), err)
	}
	return start, length, nil
}

// splitLines splits s after every newline, keeping terminators so the
// pieces concatenate back to s.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
