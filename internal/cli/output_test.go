package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyro-notes/pyro/internal/docstore"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(nameList{Names: []string{"todo"}})
	require.NoError(t, err)

	var resp struct {
		Status string   `json:"status"`
		Data   nameList `json:"data"`
	}
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"todo"}, resp.Data.Names)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("DOCUMENT_NOT_FOUND", "Document not found", "")
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "DOCUMENT_NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "Document not found", resp.Error.Message)
	assert.NotContains(t, buf.String(), "details")
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success(nameList{Names: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			err := formatter.Error("STORAGE_ERROR", "Could not read or write documents", "disk full")
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "Error [STORAGE_ERROR]: Could not read or write documents")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details: disk full")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_StoreError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	storeErr := &docstore.Error{Code: docstore.CodeLocked, Message: "cannot read while documents are locked"}
	err := formatter.StoreError(fmt.Errorf("find: %w", storeErr))

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.True(t, docstore.IsCode(err, docstore.CodeLocked))
	assert.Equal(t, "Error [LOCKED]: Documents are locked, unlock them before opening a document\n", buf.String())
}

func TestOutputFormatter_StoreErrorForeign(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.StoreError(errors.New("boom"))
	assert.True(t, IsReported(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNEXPECTED", resp.Error.Code)
	assert.Equal(t, "Unexpected error", resp.Error.Message)
	assert.Equal(t, "boom", resp.Error.Details)
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			errBuf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    buf,
				ErrWriter: errBuf,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Processing %s", "todo")

			assert.Empty(t, buf.String())
			if tt.wantLog {
				assert.Contains(t, errBuf.String(), "Processing todo")
			} else {
				assert.Empty(t, errBuf.String())
			}
		})
	}
}

func TestExitError(t *testing.T) {
	inner := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "failed to load config", inner)

	assert.Equal(t, "failed to load config: no such file", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsReported(err))
	assert.Equal(t, ExitFailure, GetExitCode(inner))
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
}
