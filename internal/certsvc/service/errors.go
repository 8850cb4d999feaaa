package service

import (
	"errors"
	"fmt"
)

// ErrNoImage is the precondition failure for an issuance submitted
// without a selected file.
var ErrNoImage = errors.New("no image selected")

// AuthError covers bad credentials, duplicate accounts and weak
// passwords. Its message is safe to surface to the user verbatim.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AuthError) Error() string { return e.Message }

func NewAuthError(code, message string) *AuthError {
	return &AuthError{Code: code, Message: message}
}

// StoreReadError wraps a failed read against the keyed store.
type StoreReadError struct {
	Key string
	Err error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("store read %s: %v", e.Key, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

// StoreWriteError wraps a failed write against the keyed store.
type StoreWriteError struct {
	Key string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write %s: %v", e.Key, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// UploadError aborts the issuance pipeline at the stage it names.
type UploadError struct {
	Stage string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed at %s: %v", e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
