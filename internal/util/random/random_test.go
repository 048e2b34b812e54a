package random_test

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/mkrupp/filedrop-checker/internal/util/random"
)

func newTestGenerator() *Generator {
	return New(rand.New(rand.NewPCG(1, 2)))
}

func TestString_ByteLengthBounds(t *testing.T) {
	t.Parallel()

	gen := newTestGenerator()

	tests := []struct {
		name    string
		minLen  int
		maxLen  int
		charset []rune
	}{
		{name: "ascii letters", minLen: 16, maxLen: 64, charset: Letters},
		{name: "letters digits punctuation", minLen: 16, maxLen: 64, charset: LettersDigitsPunct},
		{name: "minimum equals maximum", minLen: 64, maxLen: 64, charset: Letters},
		{name: "maximum below minimum is raised", minLen: 24, maxLen: 8, charset: Letters},
		{name: "multi-byte characters", minLen: 16, maxLen: 64, charset: []rune("äöü\U0001f600")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			maxLen := tt.maxLen
			if maxLen < tt.minLen {
				maxLen = tt.minLen
			}

			for range 200 {
				s, err := gen.String(tt.minLen, tt.maxLen, tt.charset)
				if err != nil {
					t.Fatalf("String() error = %v", err)
				}

				if len(s) < tt.minLen || len(s) > maxLen {
					t.Fatalf("String() byte length = %d, want within [%d, %d]", len(s), tt.minLen, maxLen)
				}
			}
		})
	}
}

func TestString_OverweightCharset(t *testing.T) {
	t.Parallel()

	gen := newTestGenerator()

	// Every charset entry is 4 bytes wide, so a 2..3 byte budget can never
	// reach the minimum length.
	_, err := gen.String(2, 3, []rune("\U0001f600\U0001f601"))
	if !errors.Is(err, ErrCharsetTooWide) {
		t.Errorf("String() error = %v, want %v", err, ErrCharsetTooWide)
	}
}

func TestShuffleCase(t *testing.T) {
	t.Parallel()

	gen := newTestGenerator()

	inputs := []string{
		"helloWORLD",
		"abcDEF123!?",
		"grüneÄpfel",
		"\U0001f600mixed\U0001f4a9CASE",
	}

	for _, input := range inputs {
		for range 50 {
			shuffled := gen.ShuffleCase(input)

			if !strings.EqualFold(input, shuffled) {
				t.Fatalf("ShuffleCase(%q) = %q, not equal under case folding", input, shuffled)
			}

			if utf8.RuneCountInString(shuffled) != utf8.RuneCountInString(input) {
				t.Fatalf("ShuffleCase(%q) = %q, character count changed", input, shuffled)
			}
		}
	}
}

func TestShuffleCase_EventuallyDiffers(t *testing.T) {
	t.Parallel()

	gen := newTestGenerator()

	input := "abcdefghijklmnop"
	for range 100 {
		if gen.ShuffleCase(input) != input {
			return
		}
	}

	t.Error("ShuffleCase() never changed the casing of a 16-letter string")
}

func TestSamplePools(t *testing.T) {
	t.Parallel()

	gen := newTestGenerator()

	for _, n := range []int{1, 8} {
		if got := utf8.RuneCountInString(gen.Emojis(n)); got != n {
			t.Errorf("Emojis(%d) returned %d characters", n, got)
		}

		if got := utf8.RuneCountInString(gen.Latin(n)); got != n {
			t.Errorf("Latin(%d) returned %d characters", n, got)
		}
	}
}

func TestPayload(t *testing.T) {
	t.Parallel()

	gen := newTestGenerator()

	for range 100 {
		payload := gen.Payload()
		if len(payload) == 0 {
			t.Fatal("Payload() returned empty payload")
		}
	}
}

func TestReproducibleUnderFixedSeed(t *testing.T) {
	t.Parallel()

	genA := New(rand.New(rand.NewPCG(7, 7)))
	genB := New(rand.New(rand.NewPCG(7, 7)))

	for range 20 {
		a, errA := genA.String(16, 64, LettersDigitsPunct)
		b, errB := genB.String(16, 64, LettersDigitsPunct)

		if errA != nil || errB != nil {
			t.Fatalf("String() errors = %v, %v", errA, errB)
		}

		if a != b {
			t.Fatalf("same seed produced %q and %q", a, b)
		}
	}
}
