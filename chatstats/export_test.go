package chatstats

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestToExport_ParsesBack(t *testing.T) {
	t.Parallel()

	c := Corpus{Name: "chat", Messages: []Message{
		{ID: 7, Author: "alice", Text: "hi", Date: day("2024-04-01"), Timestamp: time.Date(2024, 4, 1, 13, 14, 15, 0, time.UTC)},
		{Author: "bob", Date: day("2024-04-02")},
	}}

	b, err := json.Marshal(ToExport(c))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ParseArchive(context.Background(), bytes.NewReader(b))
	if err != nil {
		t.Fatalf("ParseArchive: %v", err)
	}
	if got.Name != "chat" || len(got.Messages) != 2 {
		t.Fatalf("got=%+v", got)
	}
	for i, want := range c.Messages {
		m := got.Messages[i]
		if m.ID != want.ID || m.Author != want.Author || m.Text != want.Text || !m.Date.Equal(want.Date) || !m.Timestamp.Equal(want.Timestamp) {
			t.Fatalf("message %d=%+v, want %+v", i, m, want)
		}
	}
}
