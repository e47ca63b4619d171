package results

import (
	"testing"

	"github.com/user/catalogs/internal/catalog"
)

func item(title string) catalog.Item {
	return catalog.Item{Kind: catalog.Movie, Title: title}
}

func titles(items []catalog.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestReplaceDiscardsPreviousContents(t *testing.T) {
	s := New()
	s.Replace([]catalog.Item{item("a"), item("b")})
	s.Replace([]catalog.Item{item("c")})

	if got := titles(s.Items()); len(got) != 1 || got[0] != "c" {
		t.Errorf("Items() = %v, want [c]", got)
	}
}

func TestAppendKeepsOrderAndDuplicates(t *testing.T) {
	s := New()
	s.Append(item("a"))
	s.Append(item("b"))
	s.Append(item("a"))

	got := titles(s.Items())
	want := []string{"a", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("Items() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Items()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestObserversNotifiedSynchronously(t *testing.T) {
	s := New()
	var seen [][]string
	cancel := s.Subscribe(func(items []catalog.Item) {
		seen = append(seen, titles(items))
	})

	s.Replace([]catalog.Item{item("a")})
	if len(seen) != 1 {
		t.Fatalf("observer called %d times after Replace, want 1", len(seen))
	}
	s.Append(item("b"))
	if len(seen) != 2 || len(seen[1]) != 2 {
		t.Fatalf("observer did not see Append: %v", seen)
	}

	cancel()
	s.Replace(nil)
	if len(seen) != 2 {
		t.Errorf("cancelled observer still notified: %v", seen)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	s := New()
	s.Replace([]catalog.Item{item("a")})

	got := s.Items()
	got[0].Title = "mutated"

	if it, _ := s.At(0); it.Title != "a" {
		t.Errorf("Set was mutated through Items(): %q", it.Title)
	}
	if _, ok := s.At(5); ok {
		t.Error("At() out of range should report false")
	}
}
