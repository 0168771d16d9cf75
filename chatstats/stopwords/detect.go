package stopwords

import (
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// minDetectWords keeps one-word replies out of detection; they carry too few trigrams.
const minDetectWords = 3

// Detect returns the ISO 639-1 codes of the languages that make up at least minShare of the
// texts whose language could be detected reliably, most common first.
func Detect(texts []string, minShare float64) []string {
	counts := make(map[string]int)
	var order []string
	total := 0
	for _, t := range texts {
		if len(strings.Fields(t)) < minDetectWords {
			continue
		}
		info := whatlanggo.Detect(t)
		if !info.IsReliable() {
			continue
		}
		code := info.Lang.Iso6391()
		if code == "" {
			continue
		}
		if _, ok := counts[code]; !ok {
			order = append(order, code)
		}
		counts[code]++
		total++
	}
	if total == 0 {
		return nil
	}

	var out []string
	for _, code := range order {
		if float64(counts[code])/float64(total) >= minShare {
			out = append(out, code)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return counts[out[i]] > counts[out[j]]
	})
	return out
}
