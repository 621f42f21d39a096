// Package domain holds the core types shared across courier: identities,
// key material, queued and decrypted messages, the service interfaces
// implemented by the stores and the relay, and the protocol error taxonomy.
//
// Key material uses fixed-size array types to avoid accidental
// reallocation of secrets; use Slice when an API needs a []byte view.
package domain
