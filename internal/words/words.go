// internal/words/words.go
//
// Word Selection shared by the solo round and match engines.
//
// Responsibilities:
//   - Define the difficulty tiers (easy / medium / hard).
//   - Hold one candidate list per tier and the tier's wrong-guess budget.
//   - Draw a word uniformly at random from a seedable source.
//
// Lists:
//   Built-in defaults are used unless a tier is overridden from a file
//   (WORDS_EASY_FILE, WORDS_MEDIUM_FILE, WORDS_HARD_FILE). Files hold one
//   word per line; only lowercase a–z words are kept.
//
// Budgets are fixed per tier: harder tiers allow fewer wrong guesses.

package words

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Difficulty is one of the fixed selection tiers.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists every tier, lowest first.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// ErrEmptyList is returned when a tier would be left without candidates.
var ErrEmptyList = errors.New("words: candidate list is empty")

var defaultLists = map[Difficulty][]string{
	Easy:   {"apple", "chair", "beach", "light", "plant"},
	Medium: {"planet", "window", "rocket", "silver", "jungle"},
	Hard:   {"mystery", "puzzling", "vortex", "zephyrs", "awkward"},
}

var budgets = map[Difficulty]int{
	Easy:   8,
	Medium: 7,
	Hard:   6,
}

// Valid reports whether d is a known tier.
func (d Difficulty) Valid() bool {
	_, ok := budgets[d]
	return ok
}

// ParseDifficulty maps raw input onto a tier, falling back to Easy.
// The second result is false when the fallback was used.
func ParseDifficulty(raw string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	if d.Valid() {
		return d, true
	}
	return Easy, false
}

// Budget returns the maximum wrong guesses allowed for tier d.
func Budget(d Difficulty) int { return budgets[d] }

// Bank draws words for each tier. Safe for concurrent use.
type Bank struct {
	mu    sync.Mutex
	lists map[Difficulty][]string
	rng   *rand.Rand
}

// NewBank builds a bank over the default lists using src for randomness.
// A nil src seeds from the wall clock.
func NewBank(src rand.Source) *Bank {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	lists := make(map[Difficulty][]string, len(defaultLists))
	for d, l := range defaultLists {
		lists[d] = append([]string(nil), l...)
	}
	return &Bank{lists: lists, rng: rand.New(src)}
}

// FromEnv builds a bank honoring WORDS_SEED and the per-tier file overrides.
func FromEnv() (*Bank, error) {
	var src rand.Source
	if v := os.Getenv("WORDS_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("words: WORDS_SEED: %w", err)
		}
		src = rand.NewSource(seed)
	}
	b := NewBank(src)
	for _, d := range Difficulties {
		path := os.Getenv("WORDS_" + strings.ToUpper(string(d)) + "_FILE")
		if path == "" {
			continue
		}
		if err := b.LoadFile(d, path); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Select returns a uniformly drawn word for d and the tier's budget.
// d must be a valid tier.
func (b *Bank) Select(d Difficulty) (word string, budget int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.lists[d]
	return list[b.rng.Intn(len(list))], budgets[d]
}

// Replace swaps the candidate list for d after normalizing it.
func (b *Bank) Replace(d Difficulty, list []string) error {
	if !d.Valid() {
		return fmt.Errorf("words: unknown difficulty %q", d)
	}
	clean := normalize(list)
	if len(clean) == 0 {
		return fmt.Errorf("%w (%s)", ErrEmptyList, d)
	}
	b.mu.Lock()
	b.lists[d] = clean
	b.mu.Unlock()
	return nil
}

// LoadFile replaces the list for d with the words in path.
func (b *Bank) LoadFile(d Difficulty, path string) error {
	list, err := readWordFile(path)
	if err != nil {
		return fmt.Errorf("words: read %s: %w", path, err)
	}
	return b.Replace(d, list)
}

// Stats returns the number of candidates per tier.
func (b *Bank) Stats() map[Difficulty]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lo.MapValues(b.lists, func(l []string, _ Difficulty) int { return len(l) })
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// normalize lowercases, trims, drops non a–z entries and duplicates.
func normalize(list []string) []string {
	clean := lo.Map(list, func(w string, _ int) string {
		return strings.ToLower(strings.TrimSpace(w))
	})
	clean = lo.Filter(clean, func(w string, _ int) bool {
		return w != "" && isAlpha(w)
	})
	return lo.Uniq(clean)
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
