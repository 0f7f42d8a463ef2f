package docstore

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// CodeInvalidName indicates an empty or malformed document name.
	CodeInvalidName ErrorCode = "INVALID_NAME"

	// CodeDocumentNotFound indicates no document has the given name.
	CodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"

	// CodeSavedWhenLocked indicates a mutation was attempted while Locked.
	CodeSavedWhenLocked ErrorCode = "SAVED_WHEN_LOCKED"

	// CodeLocked indicates a read was attempted while Locked.
	CodeLocked ErrorCode = "LOCKED"

	// CodeNotEncrypted indicates unlock was attempted on plaintext artifacts.
	CodeNotEncrypted ErrorCode = "NOT_ENCRYPTED"

	// CodeAlreadyLocked indicates lock was attempted on ciphertext artifacts.
	CodeAlreadyLocked ErrorCode = "ALREADY_LOCKED"

	// CodeWrongPassword indicates the engine rejected the password.
	CodeWrongPassword ErrorCode = "WRONG_PASSWORD"

	// CodeCryptError indicates any other engine failure.
	CodeCryptError ErrorCode = "CRYPT_ERROR"

	// CodeStorageError indicates a backend I/O or serialization failure.
	CodeStorageError ErrorCode = "STORAGE_ERROR"

	// CodeNoPhysicalArtifact indicates an operation needs a backing file but
	// the store is in-memory.
	CodeNoPhysicalArtifact ErrorCode = "NO_PHYSICAL_ARTIFACT"

	// CodeInvalidCommand indicates an unknown or malformed command.
	CodeInvalidCommand ErrorCode = "INVALID_COMMAND"
)

// Codes lists every ErrorCode.
var Codes = []ErrorCode{
	CodeInvalidName,
	CodeDocumentNotFound,
	CodeSavedWhenLocked,
	CodeLocked,
	CodeNotEncrypted,
	CodeAlreadyLocked,
	CodeWrongPassword,
	CodeCryptError,
	CodeStorageError,
	CodeNoPhysicalArtifact,
	CodeInvalidCommand,
}

// Error is the only error type returned by a Store.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Name is the normalized document name involved, if any.
	Name string

	// Err is the underlying backend or engine error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Name != "" {
		msg += fmt.Sprintf(" (name=%q)", e.Name)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode of err. Uses errors.As to handle wrapped errors.
func CodeOf(err error) (ErrorCode, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Code, true
	}
	return "", false
}

// IsCode reports whether err is a store error with the given code.
func IsCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func invalidNameError(err error) *Error {
	return &Error{Code: CodeInvalidName, Message: "invalid document name", Err: err}
}

func notFoundError(name string) *Error {
	return &Error{Code: CodeDocumentNotFound, Message: "document not found", Name: name}
}

func storageError(op string, err error) *Error {
	return &Error{Code: CodeStorageError, Message: op + " failed", Err: err}
}
