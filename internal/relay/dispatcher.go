package relay

import (
	"encoding/hex"
	"errors"

	"github.com/rs/zerolog"

	"courier/internal/domain"
	"courier/internal/wire"
)

// Dispatcher routes one request to the directory or the mailbox and
// produces exactly one response. It keeps no state of its own: every
// request is independent beyond what Directory and Mailbox hold, and no
// command mutates more than one of the two.
type Dispatcher struct {
	dir domain.Directory
	box domain.Mailbox
	log zerolog.Logger
}

// NewDispatcher wires a dispatcher over the given directory and mailbox.
func NewDispatcher(dir domain.Directory, box domain.Mailbox, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{dir: dir, box: box, log: log}
}

// Fixed detail strings. Internal errors never reach the wire; clients
// only ever see these.
const (
	detailKeyRegistered = "key registered"
	detailQueued        = "message queued"
	detailNoKey         = "no key for target"
	detailUnknownCmd    = "unknown command"
	detailNoIdentity    = "missing identity"
	detailNoTarget      = "missing target"
	detailBadPublicKey  = "malformed public key"
	detailBadCiphertext = "malformed ciphertext"
)

// Handle serves a single request. It never fails: protocol-level
// problems come back as status=ERROR responses.
func (d *Dispatcher) Handle(req wire.Request) wire.Response {
	resp := d.handle(req)
	commandsTotal.WithLabelValues(string(req.Cmd), resp.Status).Inc()
	return resp
}

// handle recognizes the command first: anything unknown answers
// "unknown command" even if its other fields are also bad.
func (d *Dispatcher) handle(req wire.Request) wire.Response {
	switch req.Cmd {
	case wire.CmdRegister:
		return d.register(req)
	case wire.CmdFetchKey:
		return d.fetchKey(req)
	case wire.CmdSend:
		return d.send(req)
	case wire.CmdReceive:
		return d.receive(req)
	default:
		return errorResponse(detailUnknownCmd)
	}
}

func (d *Dispatcher) register(req wire.Request) wire.Response {
	if req.Identity == "" {
		return errorResponse(detailNoIdentity)
	}
	key, err := hex.DecodeString(req.PublicKey)
	if err != nil || len(key) == 0 {
		return errorResponse(detailBadPublicKey)
	}
	d.dir.Put(req.Identity, key)
	d.log.Info().Str("identity", string(req.Identity)).Msg("registered key")
	return wire.Response{Status: wire.StatusOK, Detail: detailKeyRegistered}
}

func (d *Dispatcher) fetchKey(req wire.Request) wire.Response {
	if req.Identity == "" {
		return errorResponse(detailNoIdentity)
	}
	if req.Target == "" {
		return errorResponse(detailNoTarget)
	}
	key, err := d.dir.Get(req.Target)
	if errors.Is(err, domain.ErrNotFound) {
		return errorResponse(detailNoKey)
	}
	if err != nil {
		d.log.Error().Err(err).Str("target", string(req.Target)).Msg("directory get failed")
		return errorResponse(detailNoKey)
	}
	return wire.Response{Status: wire.StatusOK, PublicKey: hex.EncodeToString(key)}
}

func (d *Dispatcher) send(req wire.Request) wire.Response {
	if req.Identity == "" {
		return errorResponse(detailNoIdentity)
	}
	if req.Target == "" {
		return errorResponse(detailNoTarget)
	}
	ct, err := hex.DecodeString(req.Ciphertext)
	if err != nil || len(ct) == 0 {
		return errorResponse(detailBadCiphertext)
	}
	// Targets that never registered are accepted: the entry simply waits
	// until they register and drain.
	d.box.Enqueue(req.Target, domain.QueuedMessage{From: req.Identity, Ciphertext: ct})
	return wire.Response{Status: wire.StatusOK, Detail: detailQueued}
}

// entryOverhead approximates the JSON framing around one message:
// field names, quotes, separators.
const entryOverhead = 48

func (d *Dispatcher) receive(req wire.Request) wire.Response {
	if req.Identity == "" {
		return errorResponse(detailNoIdentity)
	}
	entries := d.box.Drain(req.Identity)

	// The whole batch travels as one response record, which the codec
	// bounds. Deliver as much as fits and put the tail back at the head
	// of the queue for the next RECEIVE; nothing queued is ever lost to
	// the cap. Any single entry fits: requests are capped well below
	// the batch bound.
	budget := wire.MaxBatchBytes - 1024
	msgs := make([]wire.Message, 0, len(entries))
	size := 0
	delivered := 0
	for _, e := range entries {
		cost := 2*len(e.Ciphertext) + len(e.From) + entryOverhead
		if delivered > 0 && size+cost > budget {
			break
		}
		msgs = append(msgs, wire.Message{From: e.From, Ciphertext: hex.EncodeToString(e.Ciphertext)})
		size += cost
		delivered++
	}
	if delivered < len(entries) {
		d.box.Requeue(req.Identity, entries[delivered:])
		d.log.Debug().
			Str("identity", string(req.Identity)).
			Int("delivered", delivered).
			Int("requeued", len(entries)-delivered).
			Msg("split oversized drain batch")
	}
	return wire.Response{Status: wire.StatusOK, Messages: msgs}
}

func errorResponse(detail string) wire.Response {
	return wire.Response{Status: wire.StatusError, Detail: detail}
}
