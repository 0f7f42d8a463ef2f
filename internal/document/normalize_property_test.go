package document

import (
	"testing"

	"pgregory.net/rapid"
)

// nameRunes mixes case, decomposed accents and context-sensitive lowering.
var nameRunes = []rune("aAbBeEéÉ́ßΣσİ 09-_ \t")

func TestProperty_NormalizeNameIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringOf(rapid.SampledFrom(nameRunes)).Draw(rt, "name")

		once, err := NormalizeName(name)
		if err != nil {
			// Only blank names are rejected for this alphabet.
			return
		}
		twice, err := NormalizeName(once)
		if err != nil {
			rt.Fatalf("NormalizeName(%q) failed on normalized input: %v", once, err)
		}
		if once != twice {
			rt.Fatalf("NormalizeName not idempotent: %q -> %q -> %q", name, once, twice)
		}
	})
}

func TestProperty_NameIndexMatchesSet(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		idx := NewNameIndex()
		want := map[string]bool{}

		ops := rapid.SliceOf(rapid.SampledFrom([]string{"a", "b", "c", "d"})).Draw(rt, "names")
		for i, name := range ops {
			if i%3 == 2 {
				idx.Remove(name)
				delete(want, name)
				continue
			}
			idx.Insert(name)
			want[name] = true
		}

		if idx.Len() != len(want) {
			rt.Fatalf("Len() = %d, want %d", idx.Len(), len(want))
		}
		for name := range want {
			if !idx.Contains(name) {
				rt.Fatalf("index is missing %q", name)
			}
		}
	})
}
