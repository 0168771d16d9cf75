package chatstats

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jonreiter/govader"
)

//go:embed lexicon_ms.tsv
var malayLexicon []byte

const lexiconName = "vader"

// booster weight used by VADER for intensifiers.
const boosterIncr = 0.293

var malayNegators = []string{"tak", "tidak", "bukan", "jangan", "takde", "tiada", "belum", "xde"}

var malayBoosters = map[string]float64{
	"sangat": boosterIncr, "amat": boosterIncr, "sungguh": boosterIncr, "betul": boosterIncr,
	"sikit": -boosterIncr, "sedikit": -boosterIncr,
}

// LexiconScorer is the offline polarity scorer: VADER's compound score, with its lexicon,
// negation list and boosters extended by Malay/Indonesian chat vocabulary.
//
// Score is safe for concurrent use. AddLexicon is not, and must finish before scoring starts.
type LexiconScorer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewLexiconScorer returns a VADER scorer with the built-in Malay supplement.
func NewLexiconScorer() *LexiconScorer {
	sia := govader.NewSentimentIntensityAnalyzer()
	sia.Constants.NegateList = append(sia.Constants.NegateList, malayNegators...)
	for w, v := range malayBoosters {
		sia.Constants.BoosterDict[w] = v
	}
	s := &LexiconScorer{sia: sia}
	if _, err := s.AddLexicon(bytes.NewReader(malayLexicon)); err != nil {
		panic(err)
	}
	return s
}

// AddLexicon merges "word<TAB>valence" lines into the lexicon and returns how many entries it
// read. Blank lines and lines starting with # are skipped; existing words are overwritten.
func (s *LexiconScorer) AddLexicon(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	line, n := 0, 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return n, fmt.Errorf("AddLexicon: line %d: want word and valence, got %q", line, text)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return n, fmt.Errorf("AddLexicon: line %d: %w", line, err)
		}
		if v < -4 || v > 4 {
			return n, fmt.Errorf("AddLexicon: line %d: valence %v outside [-4, 4]", line, v)
		}
		s.sia.Lexicon[strings.ToLower(fields[0])] = v
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("AddLexicon: read: %w", err)
	}
	return n, nil
}

// Name identifies the scorer in report cache keys.
func (s *LexiconScorer) Name() string {
	return lexiconName
}

// Len returns the number of lexicon entries.
func (s *LexiconScorer) Len() int {
	return len(s.sia.Lexicon)
}

// Score implements Scorer with VADER's compound score. It never fails.
func (s *LexiconScorer) Score(_ context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	return s.sia.PolarityScores(text).Compound, nil
}
