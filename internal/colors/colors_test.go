package colors

import "testing"

func TestKeyRoundTrip(t *testing.T) {
	cases := []RGB{
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
		{17, 128, 254},
	}
	for _, c := range cases {
		parsed, err := ParseKey(c.Key())
		if err != nil {
			t.Fatalf("ParseKey(%q) failed: %v", c.Key(), err)
		}
		if parsed != c {
			t.Errorf("round trip: got %v, want %v", parsed, c)
		}
	}
}

func TestKeyFormat(t *testing.T) {
	got := RGB{255, 0, 0}.Key()
	if got != "(255, 0, 0)" {
		t.Errorf("Key: got %q, want %q", got, "(255, 0, 0)")
	}
}

func TestParseKey_Invalid(t *testing.T) {
	for _, key := range []string{"", "255,0,0", "(255 0 0)", "(256, 0, 0)", "(-1, 0, 0)"} {
		if _, err := ParseKey(key); err == nil {
			t.Errorf("ParseKey(%q): expected error", key)
		}
	}
}

func TestIsBackground(t *testing.T) {
	if !Background.IsBackground() {
		t.Error("Background should report IsBackground")
	}
	if (RGB{1, 0, 0}).IsBackground() {
		t.Error("non-black color reported as background")
	}
}

func TestGeneratePalette_Distinct(t *testing.T) {
	for _, n := range []int{1, 3, 8, 16} {
		palette, err := GeneratePalette(n)
		if err != nil {
			t.Fatalf("GeneratePalette(%d) failed: %v", n, err)
		}
		if len(palette) != n {
			t.Fatalf("GeneratePalette(%d): got %d colors", n, len(palette))
		}
		seen := make(map[RGB]bool)
		for _, c := range palette {
			if c.IsBackground() {
				t.Errorf("GeneratePalette(%d) produced the background color", n)
			}
			if seen[c] {
				t.Errorf("GeneratePalette(%d) produced duplicate color %v", n, c)
			}
			seen[c] = true
		}
	}
}

func TestGeneratePalette_DefaultPrefix(t *testing.T) {
	palette, err := GeneratePalette(3)
	if err != nil {
		t.Fatalf("GeneratePalette failed: %v", err)
	}
	want := DefaultPalette()
	for i := range want {
		if palette[i] != want[i] {
			t.Errorf("color %d: got %v, want %v", i, palette[i], want[i])
		}
	}
}
