// Package tokenizer turns document text into normalized words.
// It lower-cases input, splits on non-alphanumeric boundaries, optionally
// splits camelCase/snake_case identifiers, removes stop-words, and drops
// words below a minimum length. Output is deterministic for identical
// input bytes.
package tokenizer

import (
	"strings"
	"unicode"
)

// Token is a single normalized word and its position within the document.
// Position counts emitted tokens from the start of the document.
type Token struct {
	Term     string
	Position uint32
}

// Rule is a compiled word-normalization rule.
type Rule struct {
	minLength   int
	splitIdents bool
	stopWords   map[string]struct{}
}

// NewRule compiles a normalization rule. minLength values below 1 are
// treated as 1.
func NewRule(minLength int, splitIdentifiers bool, stopWords []string) Rule {
	if minLength < 1 {
		minLength = 1
	}
	var stop map[string]struct{}
	if len(stopWords) > 0 {
		stop = make(map[string]struct{}, len(stopWords))
		for _, w := range stopWords {
			stop[strings.ToLower(w)] = struct{}{}
		}
	}
	return Rule{
		minLength:   minLength,
		splitIdents: splitIdentifiers,
		stopWords:   stop,
	}
}

// DefaultRule keeps every alphanumeric word as-is, lowercased.
func DefaultRule() Rule {
	return NewRule(1, false, nil)
}

// Tokenize breaks text into normalized Tokens.
func (r Rule) Tokenize(text string) []Token {
	words := strings.FieldsFunc(text, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})

	tokens := make([]Token, 0, len(words))
	pos := uint32(0)

	emit := func(word string) {
		word = strings.ToLower(word)
		if len(word) < r.minLength {
			return
		}
		if r.stopWords != nil {
			if _, isStop := r.stopWords[word]; isStop {
				return
			}
		}
		tokens = append(tokens, Token{Term: word, Position: pos})
		pos++
	}

	for _, word := range words {
		if r.splitIdents {
			for _, part := range splitCamelCase(word) {
				emit(part)
			}
		} else {
			emit(word)
		}
	}

	return tokens
}

// splitCamelCase splits camelCase and PascalCase identifiers.
// Examples:
//   - "getUserById" -> ["get", "User", "By", "Id"]
//   - "HTTPHandler" -> ["HTTP", "Handler"]
func splitCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, c := range runes {
		if i > 0 && unicode.IsUpper(c) {
			prevIsLower := unicode.IsLower(runes[i-1])
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			// Split if previous is lowercase OR next is lowercase; the
			// second clause keeps acronym runs like "HTTPHandler" intact.
			if prevIsLower || nextIsLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(c)
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}
