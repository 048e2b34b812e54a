package random

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrCharsetTooWide is returned when every remaining charset entry would push
// the result past the byte budget and the minimum length is not yet reached.
var ErrCharsetTooWide = errors.New("charset cannot fill requested byte length")

// overweightSkipBudget bounds how often String retries after drawing a
// character that does not fit the remaining byte budget. The original
// behavior was to retry forever; failing instead keeps pathological charsets
// (only multi-byte characters, tight budget) from hanging a verification run.
const overweightSkipBudget = 1000

// Generator produces randomized credentials, file contents and orderings from
// an injected randomness source, so runs are reproducible under a fixed seed.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator drawing from the given source. If rng is nil, a
// freshly seeded source is used.
func New(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Generator{rng: rng}
}

// String returns a random string over charset whose UTF-8 byte length lies in
// [minLen, maxLen]. If maxLen < minLen, maxLen is raised to minLen.
func (g *Generator) String(minLen, maxLen int, charset []rune) (string, error) {
	if maxLen < minLen {
		maxLen = minLen
	}

	target := minLen + g.rng.IntN(maxLen-minLen+1)

	var (
		builder strings.Builder
		skips   int
	)

	for builder.Len() < target {
		char := charset[g.rng.IntN(len(charset))]

		if builder.Len()+utf8.RuneLen(char) > maxLen {
			if builder.Len() >= minLen {
				break
			}

			skips++
			if skips > overweightSkipBudget {
				return "", fmt.Errorf("%w: %d bytes short of minimum %d",
					ErrCharsetTooWide, minLen-builder.Len(), minLen)
			}

			continue
		}

		builder.WriteRune(char)
	}

	return builder.String(), nil
}

// ShuffleCase independently re-cases each character of s at random. The
// result equals s under case-insensitive comparison and has the same number
// of characters.
func (g *Generator) ShuffleCase(s string) string {
	var builder strings.Builder

	for _, char := range s {
		if g.rng.IntN(2) == 0 {
			builder.WriteRune(unicode.ToLower(char))
		} else {
			builder.WriteRune(unicode.ToUpper(char))
		}
	}

	return builder.String()
}

// Emojis returns n distinct characters drawn from the emoji pool.
func (g *Generator) Emojis(n int) string {
	return g.sample(emojiPool, n)
}

// Latin returns n distinct characters drawn from the extended Latin pool.
func (g *Generator) Latin(n int) string {
	return g.sample(latinPool, n)
}

// Shuffle randomizes the order of n elements using the injected source.
func (g *Generator) Shuffle(n int, swap func(i, j int)) {
	g.rng.Shuffle(n, swap)
}

// Bytes returns n random bytes.
func (g *Generator) Bytes(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(g.rng.IntN(256))
	}

	return buf
}

func (g *Generator) sample(pool []rune, n int) string {
	shuffled := make([]rune, len(pool))
	copy(shuffled, pool)

	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if n > len(shuffled) {
		n = len(shuffled)
	}

	return string(shuffled[:n])
}

func (g *Generator) intRange(low, high int) int {
	return low + g.rng.IntN(high-low+1)
}

func (g *Generator) randomBytes(minLen, maxLen int) []byte {
	return g.Bytes(g.intRange(minLen, maxLen))
}
