package chatstats

// Merge concatenates archives into one corpus in the order given.
//
// Archives are assumed to be supplied in chronological order; nothing is deduplicated or
// re-sorted. The corpus takes its name from the first archive that has one.
func Merge(archives ...Archive) Corpus {
	var c Corpus
	seqs := make([][]Message, 0, len(archives))
	for _, a := range archives {
		if c.Name == "" {
			c.Name = a.Name
		}
		seqs = append(seqs, a.Messages)
	}
	c.Messages = MergeMessages(seqs...)
	return c
}

// MergeMessages appends message sequences in order into a fresh slice.
func MergeMessages(seqs ...[]Message) []Message {
	n := 0
	for _, s := range seqs {
		n += len(s)
	}
	out := make([]Message, 0, n)
	for _, s := range seqs {
		out = append(out, s...)
	}
	return out
}
