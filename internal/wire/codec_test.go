package wire_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"courier/internal/domain"
	"courier/internal/wire"
)

func TestRequestRoundTrip(t *testing.T) {
	in := wire.Request{
		Cmd:        wire.CmdSend,
		Identity:   "1111",
		Target:     "2222",
		Ciphertext: "deadbeef",
	}
	b, err := wire.EncodeRequest(in)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	out, err := wire.DecodeRequest(b)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	in := wire.Response{
		Status:   wire.StatusOK,
		Messages: []wire.Message{{From: "1111", Ciphertext: "deadbeef"}},
	}
	b, err := wire.EncodeResponse(in)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	out, err := wire.DecodeResponse(b)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if !out.OK() || len(out.Messages) != 1 || out.Messages[0] != in.Messages[0] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("{"),
		[]byte(`"just a string"`),
		[]byte(`{"identity":"1111"}`), // no cmd
	}
	for _, b := range cases {
		if _, err := wire.DecodeRequest(b); !errors.Is(err, domain.ErrMalformed) {
			t.Fatalf("DecodeRequest(%q): want ErrMalformed, got %v", b, err)
		}
	}
	if _, err := wire.DecodeResponse([]byte(`{"status":"MAYBE"}`)); !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("want ErrMalformed for unknown status, got %v", err)
	}
}

func TestDecodeOversizeRejected(t *testing.T) {
	big := bytes.Repeat([]byte("a"), wire.MaxRecordBytes+1)
	if _, err := wire.DecodeRequest(big); !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("want ErrMalformed for oversize record, got %v", err)
	}

	huge := bytes.Repeat([]byte("a"), wire.MaxBatchBytes+1)
	if _, err := wire.DecodeResponse(huge); !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("want ErrMalformed for oversize response, got %v", err)
	}
}

// Responses aggregate a drained batch, so their bound is wider than a
// single request's: a batch bigger than the request cap still decodes.
func TestDecodeResponseBatchAboveRequestCap(t *testing.T) {
	in := wire.Response{
		Status: wire.StatusOK,
		Messages: []wire.Message{
			{From: "1111", Ciphertext: strings.Repeat("ab", wire.MaxRecordBytes/2)},
			{From: "1111", Ciphertext: strings.Repeat("cd", wire.MaxRecordBytes/2)},
		},
	}
	b, err := wire.EncodeResponse(in)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	if len(b) <= wire.MaxRecordBytes {
		t.Fatalf("test batch should exceed the request cap, got %d bytes", len(b))
	}
	out, err := wire.DecodeResponse(b)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if len(out.Messages) != 2 || out.Messages[1] != in.Messages[1] {
		t.Fatalf("batch round trip mismatch")
	}
}
