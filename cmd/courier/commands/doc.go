// Package commands implements the courier CLI: register a key with the
// relay, look up a peer's key, and send or receive encrypted messages.
package commands
