// Package word supplies secret words by difficulty and progressive hints.
package word

import (
	"math/rand"
	"strings"
	"time"
)

// Bank tracks which words have been used so rounds do not repeat a word until
// the pool for a difficulty is exhausted.  Hints are derived per word and
// cached; they are never persisted.
type Bank struct {
	pools map[string][]string
	used  map[string]struct{}
	hints map[string][]string
	rand  *rand.Rand
}

// HintStages is the number of disclosure stages a word's hints go through.
const HintStages = 4

// NewBank creates a bank with the default word pools.
// A nil rand falls back to a time-seeded source.
func NewBank(r *rand.Rand) *Bank {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	b := Bank{
		pools: map[string][]string{
			"easy":   easyWords(),
			"medium": mediumWords(),
		},
		used:  make(map[string]struct{}),
		hints: make(map[string][]string),
		rand:  r,
	}
	return &b
}

// AddWords appends custom words to the difficulty's pool, creating the pool if needed.
func (b *Bank) AddWords(difficulty string, words ...string) {
	b.pools[difficulty] = append(b.pools[difficulty], words...)
}

// RandomWord returns a word from the difficulty's pool that has not been used
// in the current cycle.  When the pool is exhausted the used set resets and
// selection continues, so no caller is ever starved.
func (b *Bank) RandomWord(difficulty string) string {
	pool, ok := b.pools[difficulty]
	if !ok {
		pool = b.pools["medium"]
	}
	available := make([]string, 0, len(pool))
	for _, w := range pool {
		if _, used := b.used[w]; !used {
			available = append(available, w)
		}
	}
	if len(available) == 0 {
		b.used = make(map[string]struct{})
		available = pool
	}
	word := available[b.rand.Intn(len(available))]
	b.used[word] = struct{}{}
	b.generateHints(word)
	return word
}

// HintAt returns the hint for the word at the disclosure stage, 0 (all hidden)
// through 3 (about half revealed).  Out-of-range stages are clamped.
func (b *Bank) HintAt(word string, stage int) string {
	stages, ok := b.hints[word]
	if !ok {
		b.generateHints(word)
		stages = b.hints[word]
	}
	switch {
	case stage < 0:
		stage = 0
	case stage >= len(stages):
		stage = len(stages) - 1
	}
	return stages[stage]
}

// generateHints builds the four disclosure stages for the word:
// stage 0 hides every letter, stage 1 reveals the first, stage 2 adds the
// last, and stage 3 reveals about half of the letters preferring vowels.
// Spaces are kept as-is and never counted as letters.
func (b *Bank) generateHints(word string) {
	letters := []rune(word)
	var letterIndices []int
	for i, ch := range letters {
		if ch != ' ' {
			letterIndices = append(letterIndices, i)
		}
	}
	if len(letterIndices) == 0 {
		b.hints[word] = []string{word}
		return
	}
	revealed := make(map[int]struct{})
	stages := make([]string, 0, HintStages)
	stages = append(stages, formatHint(letters, revealed))
	revealed[letterIndices[0]] = struct{}{}
	stages = append(stages, formatHint(letters, revealed))
	if len(letterIndices) > 1 {
		revealed[letterIndices[len(letterIndices)-1]] = struct{}{}
		stages = append(stages, formatHint(letters, revealed))
	}
	target := (len(letterIndices) + 1) / 2
	var remaining []int
	for _, i := range letterIndices {
		if _, ok := revealed[i]; !ok {
			remaining = append(remaining, i)
		}
	}
	for _, i := range remaining {
		if len(revealed) >= target {
			break
		}
		if isVowel(letters[i]) {
			revealed[i] = struct{}{}
		}
	}
	var consonants []int
	for _, i := range remaining {
		if _, ok := revealed[i]; !ok {
			consonants = append(consonants, i)
		}
	}
	b.rand.Shuffle(len(consonants), func(i, j int) {
		consonants[i], consonants[j] = consonants[j], consonants[i]
	})
	for _, i := range consonants {
		if len(revealed) >= target {
			break
		}
		revealed[i] = struct{}{}
	}
	stages = append(stages, formatHint(letters, revealed))
	b.hints[word] = stages
}

// formatHint renders the word with unrevealed letters masked as underscores.
func formatHint(letters []rune, revealed map[int]struct{}) string {
	var sb strings.Builder
	for i, ch := range letters {
		switch {
		case ch == ' ':
			sb.WriteRune(' ')
		default:
			if _, ok := revealed[i]; ok {
				sb.WriteRune(ch)
			} else {
				sb.WriteRune('_')
			}
		}
	}
	return sb.String()
}

func isVowel(ch rune) bool {
	switch ch {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}
