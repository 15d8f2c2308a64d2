package wordchain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validator answers whether a word exists. Implementations must be safe for
// concurrent use.
type Validator interface {
	IsValid(word string) bool
}

// Rule names, in evaluation order.
const (
	RuleLength     = "length"
	RuleSingleWord = "single_word"
	RuleDictionary = "dictionary"
	RuleRepeat     = "repeat"
	RuleLetter     = "letter"
	RuleTimeout    = "timeout"
)

// Violation is the first rule a submission broke. It is the elimination
// signal, not an error.
type Violation struct {
	Rule   string
	Reason string
}

type rule struct {
	name   string
	passes func(g *Game, word string) bool
	reason func(g *Game) string
}

// Rules is the ordered list of checks a submitted word must pass.
type Rules struct {
	list []rule
}

// NewRules builds the rule chain: minimum length, single word, dictionary,
// not repeated, starts with the required letter.
func NewRules(dict Validator, minLength int) *Rules {
	return &Rules{list: []rule{
		{
			name:   RuleLength,
			passes: func(_ *Game, w string) bool { return utf8.RuneCountInString(w) >= minLength },
			reason: func(*Game) string { return fmt.Sprintf("word shorter than %d letters", minLength) },
		},
		{
			name:   RuleSingleWord,
			passes: func(_ *Game, w string) bool { return !strings.ContainsFunc(w, unicode.IsSpace) },
			reason: func(*Game) string { return "single words only" },
		},
		{
			name:   RuleDictionary,
			passes: func(_ *Game, w string) bool { return dict.IsValid(w) },
			reason: func(*Game) string { return "not a valid word" },
		},
		{
			name:   RuleRepeat,
			passes: func(g *Game, w string) bool { return !g.Used(w) },
			reason: func(*Game) string { return "word already used" },
		},
		{
			name:   RuleLetter,
			passes: func(g *Game, w string) bool { return g.LastLetter == "" || strings.HasPrefix(w, g.LastLetter) },
			reason: func(g *Game) string { return fmt.Sprintf("must start with '%s'", strings.ToUpper(g.LastLetter)) },
		},
	}}
}

// Check evaluates the rules in order against a normalized word and returns
// the first violation.
func (r *Rules) Check(g *Game, word string) (Violation, bool) {
	for _, rl := range r.list {
		if !rl.passes(g, word) {
			return Violation{Rule: rl.name, Reason: rl.reason(g)}, true
		}
	}
	return Violation{}, false
}

// NormalizeWord lower-cases a submission and trims surrounding whitespace.
func NormalizeWord(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
