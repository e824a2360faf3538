package layering

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func entries(pairs ...string) []Entry {
	out := make([]Entry, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Entry{Key: pairs[i], Values: []string{pairs[i+1]}})
	}
	return out
}

func TestFilterStripsPrefix(t *testing.T) {
	in := entries(
		"first", "firstLevelKey",
		"first.second", "secondLevelKey",
		"first.second.third", "deep",
		"firstly", "unrelated",
		"other.second", "other",
	)

	got := Filter(in, "first")
	want := entries(
		"second", "secondLevelKey",
		"second.third", "deep",
	)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterWithoutMatchesReturnsEmpty(t *testing.T) {
	got := Filter(entries("a", "1"), "missing")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestFilterEmptyPrefixClones(t *testing.T) {
	in := entries("a", "1", "b.c", "2")
	got := Filter(in, "")
	got[0].Values[0] = "changed"
	if in[0].Values[0] != "1" {
		t.Fatalf("filter with empty prefix must not share storage")
	}
}

func TestGlobalsSkipsNamespacedKeys(t *testing.T) {
	got := Globals(entries("a", "1", "b.c", "2", "d", "3"))
	want := entries("a", "1", "d", "3")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("globals mismatch (-want +got):\n%s", diff)
	}
}

func TestPrefixesInOrder(t *testing.T) {
	got := Prefixes(entries("z.a", "1", "plain", "2", "a.b", "3", "z.c", "4"))
	want := []string{"z", "a"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prefixes mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeLayersStrongestWins(t *testing.T) {
	strong := entries("first", "namespaced", "second", "secondLevelKey")
	weak := entries("first", "firstLevelKey", "double", "3.14")

	got := MergeLayers(strong, weak)
	want := entries(
		"first", "namespaced",
		"double", "3.14",
		"second", "secondLevelKey",
	)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeLayersThreeLevels(t *testing.T) {
	user := entries("theme", "dark")
	site := entries("theme", "light", "lang", "en")
	system := entries("theme", "default", "lang", "c", "tz", "UTC")

	got := MergeLayers(user, site, system)
	want := entries("theme", "dark", "lang", "en", "tz", "UTC")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeLayersZeroInput(t *testing.T) {
	if got := MergeLayers(); got != nil {
		t.Fatalf("expected nil for no layers, got %#v", got)
	}
}

func TestMergeLayersDoesNotAlias(t *testing.T) {
	strong := entries("a", "1")
	got := MergeLayers(strong, nil)
	got[0].Values[0] = "mutated"
	if strong[0].Values[0] != "1" {
		t.Fatalf("merge result must not share storage with inputs")
	}
}

func TestEntryLast(t *testing.T) {
	e := Entry{Key: "k", Values: []string{"a", "b"}}
	if v, ok := e.Last(); !ok || v != "b" {
		t.Fatalf("expected last value b, got %q %v", v, ok)
	}
	if _, ok := (Entry{Key: "k"}).Last(); ok {
		t.Fatalf("expected no value for empty entry")
	}
}

func TestFind(t *testing.T) {
	in := entries("a", "1", "b", "2")
	if e, ok := Find(in, "b"); !ok || e.Values[0] != "2" {
		t.Fatalf("expected to find b, got %#v %v", e, ok)
	}
	if _, ok := Find(in, "c"); ok {
		t.Fatalf("did not expect to find c")
	}
}
