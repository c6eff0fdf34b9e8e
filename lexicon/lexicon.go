package lexicon

import (
	"strings"
)

// Lexicon is the word-validity predicate games are played against.
type Lexicon interface {
	Name() string
	IsValid(word string) bool
}

// AcceptAll accepts any word. Useful for tests and casual play.
type AcceptAll struct{}

func (lex AcceptAll) Name() string {
	return "AcceptAll"
}

func (lex AcceptAll) IsValid(word string) bool {
	return true
}

// Validation is the batch result of checking several words.
type Validation struct {
	AllValid     bool     `json:"allValid"`
	InvalidWords []string `json:"invalidWords,omitempty"`
}

// ValidateWords checks every word and reports the ones the lexicon
// rejects, in order.
func ValidateWords(lex Lexicon, words []string) Validation {
	v := Validation{AllValid: true}
	for _, w := range words {
		if !lex.IsValid(strings.ToUpper(w)) {
			v.AllValid = false
			v.InvalidWords = append(v.InvalidWords, w)
		}
	}
	return v
}
