package processor

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/q0rtex/qortex-go/pkg/state"
)

// InputKind tags the flavor of input being processed.
type InputKind string

const (
	KindCommand InputKind = "command"
	KindQuery   InputKind = "query"
	KindCode    InputKind = "code"
)

// Token type tags inferred by the default tokenizer.
const (
	TagWord     = "word"
	TagNumber   = "number"
	TagOperator = "operator"
)

// Tokenizer splits raw input into ordered tokens. Implementations must be
// pure with respect to a given input.
type Tokenizer interface {
	Tokenize(input string, kind InputKind) []state.Token
}

// DefaultTokenizer normalizes input to NFC and segments it on whitespace,
// splitting runs of punctuation away from words so that shell-style input
// like "ls -la | grep go" yields separate operator tokens.
type DefaultTokenizer struct{}

func NewDefaultTokenizer() *DefaultTokenizer {
	return &DefaultTokenizer{}
}

func (d *DefaultTokenizer) Tokenize(input string, kind InputKind) []state.Token {
	normalized := norm.NFC.String(input)

	var tokens []state.Token
	for _, field := range strings.Fields(normalized) {
		for _, part := range splitRuns(field) {
			tokens = append(tokens, state.Token{
				Text: part,
				Tag:  classify(part),
			})
		}
	}
	return tokens
}

// splitRuns breaks a field into maximal runs of word-ish and
// non-word-ish runes, so "--flag=3" becomes ["--", "flag", "=", "3"].
func splitRuns(field string) []string {
	var parts []string
	var b strings.Builder
	var lastWordy bool

	for i, r := range field {
		wordy := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
		if i > 0 && wordy != lastWordy {
			parts = append(parts, b.String())
			b.Reset()
		}
		b.WriteRune(r)
		lastWordy = wordy
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}

func classify(text string) string {
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return TagNumber
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return TagWord
		}
	}
	return TagOperator
}
