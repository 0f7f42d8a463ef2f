package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pyro-notes/pyro/internal/document"
)

// Command is a typed request from the command layer.
type Command interface {
	commandName() string
}

// SaveDocument creates or replaces a document.
type SaveDocument struct {
	Name string
	Text string
}

// Crypt locks (Locking=true) or unlocks the store.
type Crypt struct {
	Password string
	Locking  bool
}

// ListDocumentNames lists every known document name.
type ListDocumentNames struct{}

// FindDocument looks up one document.
type FindDocument struct {
	Name string
}

// DeleteDocument removes one document.
type DeleteDocument struct {
	Name string
}

func (SaveDocument) commandName() string      { return cmdSaveDocument }
func (Crypt) commandName() string             { return cmdCrypt }
func (ListDocumentNames) commandName() string { return cmdListDocumentNames }
func (FindDocument) commandName() string      { return cmdFindDocument }
func (DeleteDocument) commandName() string    { return cmdDeleteDocument }

// Wire names of the commands.
const (
	cmdSaveDocument      = "saveDocument"
	cmdCrypt             = "crypt"
	cmdListDocumentNames = "listDocumentNames"
	cmdFindDocument      = "findDocument"
	cmdDeleteDocument    = "deleteDocument"
)

// Result is the payload of a successful command. Only the field relevant to
// the command is set.
type Result struct {
	Document *document.Document `json:"document,omitempty"`
	Names    []string           `json:"names,omitempty"`
}

// Execute dispatches cmd to the matching Store operation.
func (s *Store) Execute(ctx context.Context, cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case SaveDocument:
		return Result{}, s.SaveDocument(ctx, c.Name, c.Text)
	case Crypt:
		if c.Locking {
			return Result{}, s.Lock(ctx, c.Password)
		}
		return Result{}, s.Unlock(ctx, c.Password)
	case ListDocumentNames:
		names, err := s.ListDocumentNames(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{Names: names}, nil
	case FindDocument:
		doc, err := s.FindDocument(ctx, c.Name)
		if err != nil {
			return Result{}, err
		}
		return Result{Document: &doc}, nil
	case DeleteDocument:
		return Result{}, s.DeleteDocument(ctx, c.Name)
	case nil:
		return Result{}, newError(CodeInvalidCommand, "command is nil")
	default:
		return Result{}, newError(CodeInvalidCommand, fmt.Sprintf("unsupported command %T", cmd))
	}
}

// wireCommand is the JSON form sent by the UI:
//
//	{"cmd":"saveDocument","docName":"todo","text":"buy milk"}
//	{"cmd":"crypt","password":"secret","locking":true}
type wireCommand struct {
	Cmd      string  `json:"cmd"`
	DocName  *string `json:"docName"`
	Text     *string `json:"text"`
	Password *string `json:"password"`
	Locking  *bool   `json:"locking"`
}

// DecodeCommand decodes the JSON wire form of a command.
func DecodeCommand(data []byte) (Command, error) {
	var w wireCommand
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &Error{Code: CodeInvalidCommand, Message: "malformed command", Err: err}
	}

	switch w.Cmd {
	case cmdSaveDocument:
		if w.DocName == nil || w.Text == nil {
			return nil, missingFields(w.Cmd, "docName", "text")
		}
		return SaveDocument{Name: *w.DocName, Text: *w.Text}, nil
	case cmdCrypt:
		if w.Password == nil || w.Locking == nil {
			return nil, missingFields(w.Cmd, "password", "locking")
		}
		return Crypt{Password: *w.Password, Locking: *w.Locking}, nil
	case cmdListDocumentNames:
		return ListDocumentNames{}, nil
	case cmdFindDocument:
		if w.DocName == nil {
			return nil, missingFields(w.Cmd, "docName")
		}
		return FindDocument{Name: *w.DocName}, nil
	case cmdDeleteDocument:
		if w.DocName == nil {
			return nil, missingFields(w.Cmd, "docName")
		}
		return DeleteDocument{Name: *w.DocName}, nil
	case "":
		return nil, newError(CodeInvalidCommand, `missing "cmd" field`)
	default:
		return nil, newError(CodeInvalidCommand, fmt.Sprintf("unknown command %q", w.Cmd))
	}
}

func missingFields(cmd string, fields ...string) *Error {
	return newError(CodeInvalidCommand, fmt.Sprintf("%s requires fields %v", cmd, fields))
}
