// Package message is the client-side protocol flow: fetch the peer's
// registered key, run key agreement and derivation, seal or open, and
// move ciphertext through the relay.
//
// Receive isolates failures per mailbox entry: one undecryptable message
// is logged and skipped, the rest of the batch is still delivered, and
// the bad entry stays consumed on the relay. Losing such a message is a
// deliberate protocol trade-off, not an accident.
package message
