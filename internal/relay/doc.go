// Package relay implements the store-and-forward relay: the public-key
// directory, the per-identity mailboxes, the command dispatcher that ties
// them together, the TCP server that speaks the wire protocol, and the
// client used by the courier CLI.
//
// The relay never sees plaintext. It stores whatever ciphertext senders
// hand it and forwards it on the recipient's next RECEIVE; it has no
// opinion on whether a registered key is honest, which is an explicit
// limitation of the protocol.
//
// Directory and mailbox state is sharded 16 ways by identity hash so
// traffic for unrelated identities never contends on one lock, while
// operations on a single identity stay linearizable.
package relay
