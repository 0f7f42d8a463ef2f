package docstore

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	err := &Error{Code: CodeDocumentNotFound, Message: "document not found", Name: "todo"}
	assert.Equal(t, `DOCUMENT_NOT_FOUND: document not found (name="todo")`, err.Error())

	err = &Error{Code: CodeStorageError, Message: "save document failed", Err: errDiskFull}
	assert.Equal(t, "STORAGE_ERROR: save document failed: disk full", err.Error())
	assert.ErrorIs(t, err, errDiskFull)
}

func TestIsCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("command: %w", notFoundError("todo"))
	assert.True(t, IsCode(err, CodeDocumentNotFound))
	assert.False(t, IsCode(err, CodeStorageError))
	assert.False(t, IsCode(errors.New("plain"), CodeStorageError))
	assert.False(t, IsCode(nil, CodeStorageError))
}

func TestNewUserError_EveryCodeMapped(t *testing.T) {
	seen := map[string]ErrorCode{}
	for _, code := range Codes {
		ue := NewUserError(&Error{Code: code, Message: "boom"})
		require.NotEmpty(t, ue.ErrorDisplayMsg, code)
		require.NotEqual(t, "Unexpected error", ue.ErrorDisplayMsg, code)
		if prev, dup := seen[ue.ErrorDisplayMsg]; dup {
			t.Errorf("codes %s and %s share display message %q", prev, code, ue.ErrorDisplayMsg)
		}
		seen[ue.ErrorDisplayMsg] = code
	}
}

func TestNewUserError_Golden(t *testing.T) {
	var b strings.Builder
	for _, code := range Codes {
		ue := NewUserError(&Error{Code: code, Message: "boom", Err: errDiskFull})
		fmt.Fprintf(&b, "%s | %s | %q\n", code, ue.ErrorDisplayMsg, ue.DebugDetails)
	}
	ue := NewUserError(errors.New("raw failure"))
	fmt.Fprintf(&b, "%s | %s | %q\n", "(foreign)", ue.ErrorDisplayMsg, ue.DebugDetails)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "user_errors", []byte(b.String()))
}

func TestNewUserError_Nil(t *testing.T) {
	assert.Equal(t, UserError{}, NewUserError(nil))
}
