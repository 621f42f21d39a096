package domain

import "errors"

// Protocol error taxonomy. Callers wrap these with fmt.Errorf("...: %w")
// and match with errors.Is.
var (
	// ErrKeyLoad: persisted key material is corrupt or was generated for a
	// different curve. Fatal to that client's session.
	ErrKeyLoad = errors.New("key material corrupt or mismatched")

	// ErrKeyAgreement: the remote public key is malformed or degenerate
	// (wrong length, or produces an all-zero shared secret). Aborts the
	// single send or receive it occurred in.
	ErrKeyAgreement = errors.New("invalid remote public key")

	// ErrAuthentication: ciphertext failed tag verification. The message
	// is treated as tampered or misattributed and is never decrypted.
	ErrAuthentication = errors.New("message authentication failed")

	// ErrPadding: plaintext structure after decryption is malformed.
	// Handled exactly like ErrAuthentication.
	ErrPadding = errors.New("invalid message padding")

	// ErrMalformed: a wire record could not be decoded.
	ErrMalformed = errors.New("malformed wire message")

	// ErrNotFound: directory miss. A normal outcome, not a fault.
	ErrNotFound = errors.New("not found")
)
