package document

import "sort"

// NameIndex is the set of document names known to a store.
//
// NameIndex is not safe for concurrent use; the owning store serializes access.
type NameIndex struct {
	names map[string]struct{}
}

// NewNameIndex creates an index holding the given names.
func NewNameIndex(names ...string) *NameIndex {
	idx := &NameIndex{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		idx.names[name] = struct{}{}
	}
	return idx
}

// Contains reports whether name is in the index.
func (idx *NameIndex) Contains(name string) bool {
	_, ok := idx.names[name]
	return ok
}

// Insert adds name to the index. Inserting an existing name is a no-op.
func (idx *NameIndex) Insert(name string) {
	idx.names[name] = struct{}{}
}

// Remove deletes name from the index.
func (idx *NameIndex) Remove(name string) {
	delete(idx.names, name)
}

// Len returns the number of names in the index.
func (idx *NameIndex) Len() int {
	return len(idx.names)
}

// Reset replaces the contents of the index with names.
func (idx *NameIndex) Reset(names []string) {
	idx.names = make(map[string]struct{}, len(names))
	for _, name := range names {
		idx.names[name] = struct{}{}
	}
}

// All returns a sorted snapshot of the names. Later changes to the index are
// not visible through the returned slice.
func (idx *NameIndex) All() []string {
	out := make([]string, 0, len(idx.names))
	for name := range idx.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
