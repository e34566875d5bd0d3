package key

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want Key
	}{
		{"<ctrl>", Of(Ctrl)},
		{"<Ctrl>", Of(Ctrl)},
		{"<alt_gr>", Of(AltGr)},
		{"<f5>", Of(F5)},
		{"<esc>", Of(Esc)},
		{"<escape>", Of(Esc)},
		{"<return>", Of(Enter)},
		{"<pgdn>", Of(PageDown)},
		{"<win>", Of(Cmd)},
		{"<vk:186>", Code(186)},
		{"b", Code(0x42)},
		{"B", Code(0x42)},
		{"7", Code(0x37)},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		spec string
		want error
	}{
		{"", ErrEmptySpec},
		{"   ", ErrEmptySpec},
		{"<ctrl", ErrUnmatchedBracket},
		{"ctrl>", ErrUnmatchedBracket},
		{"<>", ErrInvalidSpec},
		{"<hyper>", ErrInvalidSpec},
		{"<vk:x>", ErrInvalidSpec},
		{"ctrl", ErrInvalidSpec},
		{"@", ErrInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := Parse(tt.spec)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.spec, err, tt.want)
			}
		})
	}
}

func TestParseChord(t *testing.T) {
	keys, err := ParseChord("<ctrl>+<alt>+b")
	if err != nil {
		t.Fatalf("ParseChord error = %v", err)
	}
	want := []Key{Of(Ctrl), Of(Alt), Code(0x42)}
	if len(keys) != len(want) {
		t.Fatalf("ParseChord returned %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %v, want %v", i, keys[i], want[i])
		}
	}
}

func TestParseChordCanonicalAndDedup(t *testing.T) {
	keys, err := ParseChord("<ctrl_l>+<ctrl_r>+h")
	if err != nil {
		t.Fatalf("ParseChord error = %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("ParseChord returned %d keys, want 2", len(keys))
	}
	if keys[0] != Of(Ctrl) {
		t.Errorf("keys[0] = %v, want <ctrl>", keys[0])
	}
}

func TestParseChordErrors(t *testing.T) {
	for _, spec := range []string{"", "<ctrl>+", "<ctrl>+<nope>", "+b"} {
		if _, err := ParseChord(spec); err == nil {
			t.Errorf("ParseChord(%q) should fail", spec)
		}
	}
}

func TestFormatChordRoundTrip(t *testing.T) {
	for _, spec := range []string{"<ctrl>+<alt>+b", "<shift>+<f5>", "<cmd>+<vk:186>", "<ctrl>+9"} {
		keys, err := ParseChord(spec)
		if err != nil {
			t.Fatalf("ParseChord(%q) error = %v", spec, err)
		}
		if got := FormatChord(keys); got != spec {
			t.Errorf("FormatChord(ParseChord(%q)) = %q", spec, got)
		}
	}
}

func TestMustParseChordPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParseChord should panic on invalid spec")
		}
	}()
	MustParseChord("<nope>")
}
