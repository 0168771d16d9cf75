package chatstats

import (
	"encoding/json"
	"strconv"
)

// Export is the export-shaped document written for a merged corpus. ParseArchive reads it back.
type Export struct {
	Name     string      `json:"name,omitempty"`
	Messages []RawRecord `json:"messages"`
}

// ToExport renders c as export records. Text becomes a single plain entity; messages without
// text get none.
func ToExport(c Corpus) Export {
	out := Export{
		Name:     c.Name,
		Messages: make([]RawRecord, 0, len(c.Messages)),
	}
	for _, m := range c.Messages {
		author := m.Author
		rec := RawRecord{
			Type: "message",
			Date: FormatDay(m.Date),
			From: &author,
		}
		if !m.Timestamp.IsZero() {
			rec.Date = m.Timestamp.Format(timestampLayouts[0])
		}
		if m.ID != 0 {
			rec.ID = json.RawMessage(strconv.FormatInt(m.ID, 10))
		}
		if m.HasText() {
			rec.TextEntities = []TextEntity{{Type: "plain", Text: m.Text}}
		}
		out.Messages = append(out.Messages, rec)
	}
	return out
}
