package cli

import (
	"fmt"
	"strings"

	"github.com/pyro-notes/pyro/internal/document"
)

// Result payloads. Each prints its text form via String and its JSON form
// via the struct tags.

type storeResult struct {
	Action  string `json:"action"`
	Path    string `json:"path"`
	Backend string `json:"backend,omitempty"`
	State   string `json:"state"`
}

func (r storeResult) String() string {
	if r.Backend != "" {
		return fmt.Sprintf("%s %s store at %s (%s)", r.Action, r.Backend, r.Path, r.State)
	}
	return fmt.Sprintf("%s %s", r.Action, r.Path)
}

type documentResult struct {
	Action string             `json:"action,omitempty"`
	Doc    *document.Document `json:"document,omitempty"`
	Name   string             `json:"name,omitempty"`
}

func (r documentResult) String() string {
	if r.Doc != nil {
		return r.Doc.Text
	}
	return fmt.Sprintf("%s %q", r.Action, r.Name)
}

type nameList struct {
	Names []string `json:"names"`
}

func (l nameList) String() string {
	if len(l.Names) == 0 {
		return "(no documents)"
	}
	return strings.Join(l.Names, "\n")
}
