package chatstats

import (
	"strings"
	"unicode"

	"github.com/theimaginaryfoundation/chat-dashboard/chatstats/stopwords"
)

// Tokenizer splits message text into word-frequency tokens.
//
// The rules are fixed so word tables are reproducible:
//  1. The text is NFKC-normalized and case-folded (stopwords.Normalize).
//  2. A token is a maximal run of letters, digits and combining marks. An apostrophe or hyphen
//     is kept only between two such characters ("don't", "apa-apa"); any other character,
//     including surrounding punctuation, ends the token.
//  3. A trailing possessive "'s" is dropped ("bob's" -> "bob").
//  4. Tokens made only of digits are dropped unless IncludeNumbers is set.
//  5. Tokens shorter than MinLength runes are dropped.
type Tokenizer struct {
	IncludeNumbers bool
	MinLength      int
}

// Tokens returns the tokens of text in order of appearance.
func (t Tokenizer) Tokens(text string) []string {
	if text == "" {
		return nil
	}
	runes := []rune(stopwords.Normalize(text))

	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) == 0 {
			return
		}
		if tok, ok := t.finish(string(cur)); ok {
			out = append(out, tok)
		}
		cur = cur[:0]
	}

	for i, r := range runes {
		switch {
		case isWordRune(r):
			cur = append(cur, r)
		case isJoiner(r) && len(cur) > 0 && i+1 < len(runes) && isWordRune(runes[i+1]):
			cur = append(cur, r)
		default:
			flush()
		}
	}
	flush()
	return out
}

func (t Tokenizer) finish(tok string) (string, bool) {
	tok = strings.TrimSuffix(tok, "'s")
	if tok == "" {
		return "", false
	}
	if !t.IncludeNumbers && isDigits(tok) {
		return "", false
	}
	if t.MinLength > 1 && len([]rune(tok)) < t.MinLength {
		return "", false
	}
	return tok, true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '-'
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
