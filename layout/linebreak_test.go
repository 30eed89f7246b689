package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fixedWidth measures every character as 10 points regardless of style, so
// expected break positions are easy to state in characters.
func fixedWidth(r rune, st Style) float64 { return 10 }

func lineStrings(t *testing.T, lines []TextLine) []string {
	t.Helper()
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}

func TestBreakAtLastSpace(t *testing.T) {
	frags := Styled("aaa bbb ccc", Style{})
	lines, err := NewMultiLineBreak(frags, fixedWidth).Lines(75)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	want := []string{"aaa bbb", "ccc"}
	if diff := cmp.Diff(want, lineStrings(t, lines)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestSoftHyphenBreak(t *testing.T) {
	// "data­base" with a soft hyphen; 60pt fits six characters.
	frags := Styled("data­base", Style{})
	lines, err := NewMultiLineBreak(frags, fixedWidth).Lines(60)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	want := []string{"data-", "base"}
	if diff := cmp.Diff(want, lineStrings(t, lines)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestSoftHyphenNotRenderedWhenLineFits(t *testing.T) {
	frags := Styled("data­base", Style{})
	lines, err := NewMultiLineBreak(frags, fixedWidth).Lines(200)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	want := []string{"database"}
	if diff := cmp.Diff(want, lineStrings(t, lines)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestWiderHintWins(t *testing.T) {
	// Space after "aa", soft hyphen later inside "bbbb": the hyphen hint
	// sits further right, so it wins over the space.
	frags := Styled("aa bb­bb", Style{})
	lines, err := NewMultiLineBreak(frags, fixedWidth).Lines(65)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	want := []string{"aa bb-", "bb"}
	if diff := cmp.Diff(want, lineStrings(t, lines)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestForceBreakOversizedToken(t *testing.T) {
	frags := Styled("abcdefghij", Style{})
	lines, err := NewMultiLineBreak(frags, fixedWidth).Lines(40)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	want := []string{"abcd", "efgh", "ij"}
	if diff := cmp.Diff(want, lineStrings(t, lines)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestSingleCharacterDoesNotFit(t *testing.T) {
	frags := Styled("x", Style{})
	_, err := NewMultiLineBreak(frags, fixedWidth).Lines(5)
	if err != ErrNoHorizontalSpace {
		t.Fatalf("got %v, want ErrNoHorizontalSpace", err)
	}
}

func TestNewlineForcesBreak(t *testing.T) {
	frags := Styled("one\ntwo", Style{})
	lines, err := NewMultiLineBreak(frags, fixedWidth).Lines(1000)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lineStrings(t, lines))
	}
	if !lines[0].TrailingNL {
		t.Error("first line should record the explicit newline")
	}
	if lines[0].String() != "one" || lines[1].String() != "two" {
		t.Errorf("lines = %v", lineStrings(t, lines))
	}
}

func TestStyleChangeDoesNotResetWidth(t *testing.T) {
	// Three fragments, bold in the middle. With per-character width 10 and
	// limit 75, the break must land at the space inside the third fragment,
	// proving the accumulator ran across all three styles.
	frags := []Fragment{
		{Style: Style{}, Chars: []rune("aa ")},
		{Style: Style{Bold: true}, Chars: []rune("bb")},
		{Style: Style{}, Chars: []rune(" cc dd")},
	}
	lines, err := NewMultiLineBreak(frags, fixedWidth).Lines(75)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	want := []string{"aa bb", "cc dd"}
	if diff := cmp.Diff(want, lineStrings(t, lines)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	// The styled run survives in the output fragments.
	var sawBold bool
	for _, f := range lines[0].Fragments {
		if f.Style.Bold {
			sawBold = true
		}
	}
	if !sawBold {
		t.Error("bold fragment lost during breaking")
	}
}

func TestBreakPointsAreDeterministic(t *testing.T) {
	frags := []Fragment{
		{Style: Style{}, Chars: []rune("lorem ip­sum ")},
		{Style: Style{Italic: true}, Chars: []rune("dolor sit")},
	}
	first, err := NewMultiLineBreak(frags, fixedWidth).Lines(70)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	for run := 0; run < 10; run++ {
		again, err := NewMultiLineBreak(frags, fixedWidth).Lines(70)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", run, diff)
		}
	}
}

func TestJustifyCountsSpaces(t *testing.T) {
	frags := Styled("a b c ddd", Style{})
	m := NewMultiLineBreak(frags, fixedWidth, WithJustifiedLines())
	line, ok, err := m.Line(55)
	if err != nil || !ok {
		t.Fatalf("line: %v ok=%v", err, ok)
	}
	if line.String() != "a b c" {
		t.Fatalf("line = %q", line.String())
	}
	if !line.Justify || line.SpaceCount != 2 {
		t.Errorf("justify=%v spaces=%d, want true/2", line.Justify, line.SpaceCount)
	}
}

func TestPrintedSoftHyphens(t *testing.T) {
	frags := Styled("a­b", Style{})
	lines, err := NewMultiLineBreak(frags, fixedWidth, WithPrintedSoftHyphens()).Lines(1000)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 || lines[0].String() != "a­b" {
		t.Errorf("lines = %v", lineStrings(t, lines))
	}
}
