package relay

import (
	"encoding/hex"
	"testing"

	"github.com/rs/zerolog"

	"courier/internal/domain"
	"courier/internal/wire"
)

func newTestDispatcher() *Dispatcher {
	return NewDispatcher(NewDirectory(), NewMailbox(), zerolog.Nop())
}

func TestDispatcherRegisterThenFetch(t *testing.T) {
	d := newTestDispatcher()
	pub := hex.EncodeToString([]byte("public-key-bytes"))

	resp := d.Handle(wire.Request{Cmd: wire.CmdRegister, Identity: "1111", PublicKey: pub})
	if !resp.OK() {
		t.Fatalf("register failed: %+v", resp)
	}

	resp = d.Handle(wire.Request{Cmd: wire.CmdFetchKey, Identity: "2222", Target: "1111"})
	if !resp.OK() || resp.PublicKey != pub {
		t.Fatalf("fetch after register: %+v", resp)
	}
}

func TestDispatcherFetchMissingKey(t *testing.T) {
	d := newTestDispatcher()
	resp := d.Handle(wire.Request{Cmd: wire.CmdFetchKey, Identity: "1111", Target: "9999"})
	if resp.OK() || resp.Detail != "no key for target" {
		t.Fatalf("want ERROR no key for target, got %+v", resp)
	}
}

func TestDispatcherSendReceive(t *testing.T) {
	d := newTestDispatcher()
	ct := hex.EncodeToString([]byte("ciphertext"))

	// Target never registered: SEND still succeeds.
	resp := d.Handle(wire.Request{Cmd: wire.CmdSend, Identity: "1111", Target: "2222", Ciphertext: ct})
	if !resp.OK() {
		t.Fatalf("send to unregistered target: %+v", resp)
	}

	resp = d.Handle(wire.Request{Cmd: wire.CmdReceive, Identity: "2222"})
	if !resp.OK() || len(resp.Messages) != 1 {
		t.Fatalf("receive: %+v", resp)
	}
	if resp.Messages[0].From != "1111" || resp.Messages[0].Ciphertext != ct {
		t.Fatalf("unexpected message: %+v", resp.Messages[0])
	}

	// Mailbox is now empty.
	resp = d.Handle(wire.Request{Cmd: wire.CmdReceive, Identity: "2222"})
	if !resp.OK() || len(resp.Messages) != 0 {
		t.Fatalf("second receive must be empty: %+v", resp)
	}
}

func TestDispatcherUnknownCommand(t *testing.T) {
	d := newTestDispatcher()
	resp := d.Handle(wire.Request{Cmd: "FROBNICATE", Identity: "1111"})
	if resp.OK() || resp.Detail != "unknown command" {
		t.Fatalf("want ERROR unknown command, got %+v", resp)
	}

	// Command recognition comes first: an unknown command with no
	// identity still answers "unknown command", not "missing identity".
	resp = d.Handle(wire.Request{Cmd: "FROBNICATE"})
	if resp.OK() || resp.Detail != "unknown command" {
		t.Fatalf("want ERROR unknown command without identity, got %+v", resp)
	}
}

// A drained batch too large for one response record is delivered across
// consecutive RECEIVEs instead of being lost: the tail goes back to the
// head of the queue, still ahead of later arrivals.
func TestDispatcherSplitsOversizedDrain(t *testing.T) {
	box := NewMailbox()
	d := NewDispatcher(NewDirectory(), box, zerolog.Nop())

	// Two entries whose combined hex exceeds the response budget, so
	// only one fits per response.
	big := make([]byte, 3<<20)
	for i := range big {
		big[i] = byte(i)
	}
	box.Enqueue("2222", domain.QueuedMessage{From: "1111", Ciphertext: big})
	box.Enqueue("2222", domain.QueuedMessage{From: "3333", Ciphertext: big})

	first := d.Handle(wire.Request{Cmd: wire.CmdReceive, Identity: "2222"})
	if !first.OK() || len(first.Messages) != 1 || first.Messages[0].From != "1111" {
		t.Fatalf("first receive: want 1 message from 1111, got %d (%+v)", len(first.Messages), first.Status)
	}
	if b, err := wire.EncodeResponse(first); err != nil || len(b) > wire.MaxBatchBytes {
		t.Fatalf("first response must fit the batch cap: len=%d err=%v", len(b), err)
	}

	// An entry arriving between the two receives queues behind the
	// requeued tail.
	box.Enqueue("2222", domain.QueuedMessage{From: "4444", Ciphertext: []byte("late")})

	second := d.Handle(wire.Request{Cmd: wire.CmdReceive, Identity: "2222"})
	if !second.OK() || len(second.Messages) != 2 {
		t.Fatalf("second receive: want the requeued entry plus the late one, got %d", len(second.Messages))
	}
	if second.Messages[0].From != "3333" || second.Messages[1].From != "4444" {
		t.Fatalf("second receive out of order: %s then %s", second.Messages[0].From, second.Messages[1].From)
	}

	third := d.Handle(wire.Request{Cmd: wire.CmdReceive, Identity: "2222"})
	if !third.OK() || len(third.Messages) != 0 {
		t.Fatalf("third receive must be empty, got %d", len(third.Messages))
	}
}

func TestDispatcherValidation(t *testing.T) {
	d := newTestDispatcher()

	cases := []struct {
		name   string
		req    wire.Request
		detail string
	}{
		{"no identity", wire.Request{Cmd: wire.CmdReceive}, "missing identity"},
		{"fetch without target", wire.Request{Cmd: wire.CmdFetchKey, Identity: "1111"}, "missing target"},
		{"send without target", wire.Request{Cmd: wire.CmdSend, Identity: "1111", Ciphertext: "aa"}, "missing target"},
		{"bad key hex", wire.Request{Cmd: wire.CmdRegister, Identity: "1111", PublicKey: "zz"}, "malformed public key"},
		{"bad ciphertext hex", wire.Request{Cmd: wire.CmdSend, Identity: "1111", Target: "2222", Ciphertext: "zz"}, "malformed ciphertext"},
	}
	for _, tc := range cases {
		resp := d.Handle(tc.req)
		if resp.OK() || resp.Detail != tc.detail {
			t.Fatalf("%s: want ERROR %q, got %+v", tc.name, tc.detail, resp)
		}
	}
}
