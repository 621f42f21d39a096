// Package wire defines the relay protocol records and their byte
// encoding.
//
// A request names a command (REGISTER, FETCH_KEY, SEND, RECEIVE) plus
// the fields that command uses; a response carries an OK or ERROR status
// with a detail string and the command's payload. Records are JSON
// objects; binary fields (public keys, ciphertext) travel hex-encoded.
// Decoding enforces a hard size cap and surfaces domain.ErrMalformed on
// anything it cannot parse, so a hostile peer can neither crash a
// connection handler nor exhaust its memory through the codec.
package wire
