// Package stopwords holds the word lists filtered out of word-frequency tables, and picks which
// lists apply to a chat by detecting the languages its messages are written in.
package stopwords

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

//go:embed data/*.txt
var embedded embed.FS

// aliases maps ISO 639-1 codes onto the embedded list that covers them.
var aliases = map[string]string{
	"id": "ms",
}

// Set is a case-folded set of stopwords. The zero value is an empty set.
type Set struct {
	words map[string]struct{}
}

// Normalize applies the folding used for both stopwords and tokens: NFKC, then full Unicode case
// folding, then the typographic apostrophe is mapped to '.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.ReplaceAll(s, "’", "'")
}

// New builds a set from words. Blank entries are ignored.
func New(words ...string) Set {
	s := Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.add(w)
	}
	return s
}

func (s *Set) add(w string) {
	w = Normalize(strings.TrimSpace(w))
	if w == "" {
		return
	}
	if s.words == nil {
		s.words = make(map[string]struct{})
	}
	s.words[w] = struct{}{}
}

// Contains reports whether word (folded) is a stopword.
func (s Set) Contains(word string) bool {
	if len(s.words) == 0 {
		return false
	}
	_, ok := s.words[Normalize(word)]
	return ok
}

// Len returns the number of distinct stopwords.
func (s Set) Len() int {
	return len(s.words)
}

// Union returns a new set holding the words of s and every other set.
func (s Set) Union(others ...Set) Set {
	out := Set{words: make(map[string]struct{}, len(s.words))}
	for w := range s.words {
		out.words[w] = struct{}{}
	}
	for _, o := range others {
		for w := range o.words {
			out.words[w] = struct{}{}
		}
	}
	return out
}

// Words returns the set's words sorted.
func (s Set) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Load reads one stopword per line. Blank lines and lines starting with # are skipped.
func Load(r io.Reader) (Set, error) {
	s := New()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.add(line)
	}
	if err := sc.Err(); err != nil {
		return Set{}, fmt.Errorf("stopwords: read list: %w", err)
	}
	return s, nil
}

// ForLanguage returns the embedded list for an ISO 639-1 code.
func ForLanguage(code string) (Set, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if a, ok := aliases[code]; ok {
		code = a
	}
	f, err := embedded.Open("data/" + code + ".txt")
	if err != nil {
		return Set{}, false
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return Set{}, false
	}
	return s, true
}

// ForLanguages unions the embedded lists for codes. Codes without a list are skipped.
func ForLanguages(codes ...string) Set {
	out := New()
	for _, c := range codes {
		if s, ok := ForLanguage(c); ok {
			out = out.Union(s)
		}
	}
	return out
}

// Available lists the language codes that have an embedded list.
func Available() []string {
	ents, err := embedded.ReadDir("data")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(ents))
	for _, e := range ents {
		out = append(out, strings.TrimSuffix(e.Name(), ".txt"))
	}
	sort.Strings(out)
	return out
}
