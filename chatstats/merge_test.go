package chatstats

import "testing"

func TestMerge_ConcatenatesInOrder(t *testing.T) {
	t.Parallel()

	a := Archive{Messages: []Message{{Author: "a1"}, {Author: "a2"}}}
	b := Archive{Name: "second", Messages: []Message{{Author: "b1"}}}
	c := Archive{Name: "third", Messages: []Message{{Author: "a1"}}}

	got := Merge(a, b, c)
	if got.Name != "second" {
		t.Fatalf("Name=%q, want second", got.Name)
	}
	want := []string{"a1", "a2", "b1", "a1"}
	if got.Len() != len(want) {
		t.Fatalf("Len=%d, want %d", got.Len(), len(want))
	}
	for i, w := range want {
		if got.Messages[i].Author != w {
			t.Fatalf("Messages[%d].Author=%q, want %q", i, got.Messages[i].Author, w)
		}
	}

	// The merged slice must not alias an input archive.
	got.Messages[0].Author = "changed"
	if a.Messages[0].Author != "a1" {
		t.Fatalf("input archive was mutated")
	}
}

func TestMerge_SingleAndEmpty(t *testing.T) {
	t.Parallel()

	one := Archive{Name: "solo", Messages: []Message{{Author: "x"}}}
	if got := Merge(one); got.Len() != 1 || got.Name != "solo" {
		t.Fatalf("Merge(one)=%+v", got)
	}
	if got := Merge(); got.Len() != 0 || got.Name != "" {
		t.Fatalf("Merge()=%+v", got)
	}
	if got := MergeMessages(nil, []Message{{Author: "y"}}, nil); len(got) != 1 {
		t.Fatalf("MergeMessages len=%d, want 1", len(got))
	}
}

func TestMerge_NameFromFirstNamedArchive(t *testing.T) {
	t.Parallel()

	unnamed := Archive{Messages: []Message{{Author: "x"}}}
	first := Archive{Name: "first"}
	second := Archive{Name: "second"}

	if got := Merge(first, second).Name; got != "first" {
		t.Fatalf("Name=%q, want first", got)
	}
	// An unnamed leading archive does not blank the title.
	if got := Merge(unnamed, second, first).Name; got != "second" {
		t.Fatalf("Name=%q, want second", got)
	}
	if got := Merge(unnamed, unnamed).Name; got != "" {
		t.Fatalf("Name=%q, want empty", got)
	}
}
