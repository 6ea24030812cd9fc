package diff

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedIdenticalIsEmpty(t *testing.T) {
	assert.Equal(t, "", Unified("", "", "f.txt"))
	assert.Equal(t, "", Unified("a\nb\n", "a\nb\n", "f.txt"))
}

func TestUnifiedSingleLineChange(t *testing.T) {
	got := Unified("a\nb\nc\n", "a\nB\nc\n", "f.txt")
	want := "--- a/f.txt\n" +
		"+++ b/f.txt\n" +
		"@@ -1,3 +1,3 @@\n" +
		" a\n" +
		"-b\n" +
		"+B\n" +
		" c\n"
	assert.Equal(t, want, got)
}

func TestUnifiedFromEmpty(t *testing.T) {
	got := Unified("", "x\n", "new.txt")
	want := "--- a/new.txt\n+++ b/new.txt\n@@ -0,0 +1 @@\n+x\n"
	assert.Equal(t, want, got)
}

func TestUnifiedToEmpty(t *testing.T) {
	got := Unified("x\ny\n", "", "gone.txt")
	want := "--- a/gone.txt\n+++ b/gone.txt\n@@ -1,2 +0,0 @@\n-x\n-y\n"
	assert.Equal(t, want, got)
}

func TestUnifiedMissingTrailingNewline(t *testing.T) {
	got := Unified("a\nb", "a\nb\n", "f.txt")
	assert.Contains(t, got, "-b\n"+noNewlineMarker+"\n+b\n")
}

func TestUnifiedKeepsThreeLinesOfContext(t *testing.T) {
	var orig, prop []string
	for i := 0; i < 20; i++ {
		orig = append(orig, "line")
		prop = append(prop, "line")
	}
	orig[10] = "old"
	prop[10] = "new"
	got := Unified(strings.Join(orig, "\n")+"\n", strings.Join(prop, "\n")+"\n", "f")

	assert.Contains(t, got, "@@ -8,7 +8,7 @@\n")
	added, removed := Stat(got)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
}

func TestUnifiedSplitsDistantChanges(t *testing.T) {
	var orig, prop []string
	for i := 0; i < 30; i++ {
		orig = append(orig, "l")
		prop = append(prop, "l")
	}
	orig[2], prop[2] = "x", "y"
	orig[25], prop[25] = "x", "y"
	got := Unified(strings.Join(orig, "\n")+"\n", strings.Join(prop, "\n")+"\n", "f")

	assert.Equal(t, 2, strings.Count(got, "\n@@ "))
}

func TestApplyRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		original string
		proposed string
	}{
		{"change", "a\nb\nc\n", "a\nB\nc\n"},
		{"create", "", "package main\n\nfunc main() {}\n"},
		{"delete all", "one\ntwo\n", ""},
		{"append", "a\n", "a\nb\nc\n"},
		{"prepend", "c\n", "a\nb\nc\n"},
		{"no trailing newline", "a\nb", "a\nc"},
		{"add trailing newline", "a\nb", "a\nb\n"},
		{"far apart", strings.Repeat("x\n", 12) + "y\n" + strings.Repeat("x\n", 12),
			"z\n" + strings.Repeat("x\n", 12) + "y\n" + strings.Repeat("x\n", 11) + "w\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			patch := Unified(tc.original, tc.proposed, "f")
			got, err := Apply(tc.original, patch)
			require.NoError(t, err)
			assert.Equal(t, tc.proposed, got)
		})
	}
}

func TestApplyRejectsMismatch(t *testing.T) {
	patch := Unified("a\nb\nc\n", "a\nB\nc\n", "f")
	_, err := Apply("a\nzzz\nc\n", patch)
	assert.Error(t, err)
}

func TestApplyEmptyPatch(t *testing.T) {
	got, err := Apply("same\n", "")
	require.NoError(t, err)
	assert.Equal(t, "same\n", got)
}

func TestStatIgnoresHeaders(t *testing.T) {
	patch := Unified("a\n", "b\nc\n", "f")
	added, removed := Stat(patch)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, removed)
}

var repeatedLines = []string{"}", "", "\t}", "1", "12", "123", "a", "@@ x", "return nil", "\tif err != nil {"}

func randomDoc(rng *rand.Rand, n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = repeatedLines[rng.Intn(len(repeatedLines))]
	}
	doc := strings.Join(lines, "\n")
	if n > 0 && rng.Intn(4) != 0 {
		doc += "\n"
	}
	return doc
}

// mutate deletes, inserts and moves runs of lines.
func mutate(rng *rand.Rand, doc string) string {
	lines := strings.Split(doc, "\n")
	for edits := rng.Intn(5) + 1; edits > 0 && len(lines) > 0; edits-- {
		i := rng.Intn(len(lines))
		j := min(len(lines), i+rng.Intn(4)+1)
		switch rng.Intn(3) {
		case 0:
			lines = append(lines[:i:i], lines[j:]...)
		case 1:
			extra := strings.Split(randomDoc(rng, j-i), "\n")
			lines = append(lines[:i:i], append(extra, lines[i:]...)...)
		default:
			block := append([]string(nil), lines[i:j]...)
			rest := append(lines[:i:i], lines[j:]...)
			k := rng.Intn(len(rest) + 1)
			lines = append(rest[:k:k], append(block, rest[k:]...)...)
		}
	}
	return strings.Join(lines, "\n")
}

func assertRoundTrip(t *testing.T, original, proposed string) {
	t.Helper()
	patch := Unified(original, proposed, "f")
	got, err := Apply(original, patch)
	require.NoError(t, err, "original=%q proposed=%q", original, proposed)
	require.Equal(t, proposed, got, "original=%q proposed=%q", original, proposed)
	require.Equal(t, "", Unified(original, original, "f"))
}

func TestRoundTripRandomDocuments(t *testing.T) {
	rng := rand.New(rand.NewSource(20250601))
	for i := 0; i < 3000; i++ {
		original := randomDoc(rng, rng.Intn(40))
		proposed := mutate(rng, original)
		if i%5 == 0 {
			proposed = randomDoc(rng, rng.Intn(40))
		}
		assertRoundTrip(t, original, proposed)
	}
}

func TestRoundTripLargeDocuments(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{1200, 5000, 70000} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			original := randomDoc(rng, n)
			assertRoundTrip(t, original, mutate(rng, original))
		})
	}
}

func TestRoundTripMultiDigitLines(t *testing.T) {
	assertRoundTrip(t, "@@ x\n12\na\n", "12\n1\n@@ x\na\n")
	assertRoundTrip(t, "1\n12\n2\n21\n", "21\n2\n12\n1\n")
}

func TestUnifiedMovedFunction(t *testing.T) {
	original := "package main\n\nfunc a() {\n\treturn\n}\n\nfunc b() {\n\treturn\n}\n\nfunc c() {\n\treturn\n}\n"
	proposed := "package main\n\nfunc c() {\n\treturn\n}\n\nfunc a() {\n\treturn\n}\n\nfunc b() {\n\treturn\n}\n"

	patch := Unified(original, proposed, "main.go")
	assertRoundTrip(t, original, proposed)
	assert.Equal(t, 1, strings.Count(patch, "package main"), "package clause only appears as context")
	for _, line := range strings.Split(patch, "\n") {
		assert.NotEqual(t, "+package main", line)
	}
}
