// Package dictionary holds the set of words accepted by the word chain game.
package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// fallbackWords keeps the game playable when no word list is available.
var fallbackWords = []string{
	"apple", "eagle", "elephant", "tiger", "rabbit", "tree", "egg", "game",
	"echo", "orange", "engine", "night", "table", "energy", "yellow", "water",
	"river", "rain", "nest", "tent", "trap", "pear", "road", "door", "rose",
	"earth", "house", "snake", "kite", "eel", "lamp", "pen", "note", "ear",
}

// Dictionary is an immutable set of lower-cased words. It is safe for
// concurrent use because it is never written after construction.
type Dictionary struct {
	words    map[string]struct{}
	fallback bool
}

// New builds a dictionary from the given words.
func New(words []string) *Dictionary {
	d := &Dictionary{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if w = normalize(w); w != "" {
			d.words[w] = struct{}{}
		}
	}
	return d
}

// Fallback returns the built-in minimal dictionary.
func Fallback() *Dictionary {
	d := New(fallbackWords)
	d.fallback = true
	return d
}

// Read parses a newline-delimited word list.
func Read(r io.Reader) (*Dictionary, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return New(words), nil
}

// Load reads the word list at path. A missing, unreadable or empty list
// degrades to the built-in fallback set instead of failing startup.
func Load(path string) *Dictionary {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn().Str("path", path).Msg("Word list not found, using built-in fallback")
		} else {
			log.Error().Err(err).Str("path", path).Msg("Failed to open word list, using built-in fallback")
		}
		return Fallback()
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to read word list, using built-in fallback")
		return Fallback()
	}
	if d.Len() == 0 {
		log.Warn().Str("path", path).Msg("Word list is empty, using built-in fallback")
		return Fallback()
	}

	log.Info().Str("path", path).Int("words", d.Len()).Msg("Word list loaded")
	return d
}

// IsValid reports whether word is in the dictionary, ignoring case.
func (d *Dictionary) IsValid(word string) bool {
	_, ok := d.words[normalize(word)]
	return ok
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	return len(d.words)
}

// IsFallback reports whether this is the built-in fallback set.
func (d *Dictionary) IsFallback() bool {
	return d.fallback
}

func normalize(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}
