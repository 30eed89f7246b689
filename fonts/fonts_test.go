package fonts

import "testing"

// Embedded faces measure runs with a shaping pass.
var _ RunMeasurer = (*Embedded)(nil)

func TestLoadCoreVariants(t *testing.T) {
	cases := []struct {
		family       string
		bold, italic bool
		want         string
	}{
		{"Helvetica", false, false, "Helvetica"},
		{"helvetica", true, false, "Helvetica-Bold"},
		{"Helvetica", false, true, "Helvetica-Oblique"},
		{"Helvetica", true, true, "Helvetica-BoldOblique"},
		{"Courier", false, false, "Courier"},
		{"courier", true, true, "Courier-BoldOblique"},
		{"Times", false, false, "Times-Roman"},
		{"times", true, false, "Times-Bold"},
		{"Times", false, true, "Times-Italic"},
	}
	for _, tc := range cases {
		f, err := LoadCore(tc.family, tc.bold, tc.italic)
		if err != nil {
			t.Fatalf("LoadCore(%q, %v, %v): %v", tc.family, tc.bold, tc.italic, err)
		}
		if f.BaseName() != tc.want {
			t.Errorf("LoadCore(%q, %v, %v).BaseName() = %q, want %q",
				tc.family, tc.bold, tc.italic, f.BaseName(), tc.want)
		}
	}
}

func TestUnknownFamilyFails(t *testing.T) {
	if _, err := LoadCore("Comic Sans", false, false); err == nil {
		t.Fatal("unknown family should fail")
	}
}

func TestCoreAdvances(t *testing.T) {
	helv, _ := LoadCore("Helvetica", false, false)
	if w := helv.Advance(' '); w != 278 {
		t.Errorf("Helvetica space = %v, want 278", w)
	}
	if w := helv.Advance('W'); w != 944 {
		t.Errorf("Helvetica W = %v, want 944", w)
	}

	courier, _ := LoadCore("Courier", true, false)
	for _, r := range "iWM " {
		if w := courier.Advance(r); w != 600 {
			t.Errorf("Courier %q = %v, want 600 (fixed pitch)", r, w)
		}
	}
}

func TestSoftHyphenMeasuresAsHyphen(t *testing.T) {
	helv, _ := LoadCore("Helvetica", false, false)
	if got, want := helv.Advance('­'), helv.Advance('-'); got != want {
		t.Errorf("soft hyphen = %v, hyphen = %v; must match", got, want)
	}
}

func TestBoldIsWiderForLetters(t *testing.T) {
	reg, _ := LoadCore("Helvetica", false, false)
	bold, _ := LoadCore("Helvetica", true, false)
	if reg.Advance('a') >= bold.Advance('b') && reg.Advance('i') >= bold.Advance('i') {
		t.Error("expected bold advances to differ from regular")
	}
}

func TestLoadTrueTypeRejectsGarbage(t *testing.T) {
	if _, err := LoadTrueType("X", nil); err == nil {
		t.Error("empty data should fail")
	}
	if _, err := LoadTrueType("X", []byte("definitely not a font")); err == nil {
		t.Error("malformed data should fail")
	}
}
