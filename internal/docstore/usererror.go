package docstore

// UserError is the user-facing form of an error. Expected errors carry only
// a display message; unexpected ones also carry diagnostic details.
type UserError struct {
	ErrorDisplayMsg string `json:"errorDisplayMsg"`
	DebugDetails    string `json:"debugDetails,omitempty"`
}

// NewUserError converts any error into a UserError.
func NewUserError(err error) UserError {
	if err == nil {
		return UserError{}
	}

	code, ok := CodeOf(err)
	if !ok {
		return UserError{ErrorDisplayMsg: "Unexpected error", DebugDetails: err.Error()}
	}

	switch code {
	case CodeInvalidName:
		return UserError{ErrorDisplayMsg: "Document names must not be empty"}
	case CodeDocumentNotFound:
		return UserError{ErrorDisplayMsg: "Document not found"}
	case CodeSavedWhenLocked:
		return UserError{ErrorDisplayMsg: "Documents are locked, unlock them before making changes"}
	case CodeLocked:
		return UserError{ErrorDisplayMsg: "Documents are locked, unlock them before opening a document"}
	case CodeNotEncrypted:
		return UserError{ErrorDisplayMsg: "The documents file is not encrypted"}
	case CodeAlreadyLocked:
		return UserError{ErrorDisplayMsg: "Documents are already locked"}
	case CodeWrongPassword:
		return UserError{ErrorDisplayMsg: "Wrong password"}
	case CodeCryptError:
		return UserError{ErrorDisplayMsg: "Encryption failed", DebugDetails: err.Error()}
	case CodeStorageError:
		return UserError{ErrorDisplayMsg: "Could not read or write documents", DebugDetails: err.Error()}
	case CodeNoPhysicalArtifact:
		return UserError{ErrorDisplayMsg: "This store has no file to encrypt", DebugDetails: err.Error()}
	case CodeInvalidCommand:
		return UserError{ErrorDisplayMsg: "Invalid command", DebugDetails: err.Error()}
	}

	// An ErrorCode value outside Codes.
	return UserError{ErrorDisplayMsg: "Unexpected error", DebugDetails: err.Error()}
}
