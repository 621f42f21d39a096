package wire

import (
	"encoding/json"
	"fmt"

	"courier/internal/domain"
)

// MaxRecordBytes caps a single encoded request. Anything larger is
// rejected before unmarshalling.
const MaxRecordBytes = 1 << 20

// MaxBatchBytes caps an encoded response. A RECEIVE response aggregates
// a whole drained batch into one record, so its bound is several times
// the request cap; the dispatcher keeps batches under it by leaving the
// tail of an oversized drain queued for the next RECEIVE.
const MaxBatchBytes = 8 << 20

// Command selects a dispatcher operation.
type Command string

const (
	CmdRegister Command = "REGISTER"
	CmdFetchKey Command = "FETCH_KEY"
	CmdSend     Command = "SEND"
	CmdReceive  Command = "RECEIVE"
)

// Statuses of a Response.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request is one client command. Fields unused by a command are omitted
// on the wire.
type Request struct {
	Cmd        Command         `json:"cmd"`
	Identity   domain.Identity `json:"identity,omitempty"`
	Target     domain.Identity `json:"target,omitempty"`
	PublicKey  string          `json:"public_key,omitempty"`
	Ciphertext string          `json:"ciphertext,omitempty"`
}

// Message is one mailbox entry as carried inside a RECEIVE response.
type Message struct {
	From       domain.Identity `json:"from"`
	Ciphertext string          `json:"ciphertext"`
}

// Response is the relay's answer to exactly one Request.
type Response struct {
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	PublicKey string    `json:"public_key,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
}

// OK reports whether the response carries StatusOK.
func (r Response) OK() bool { return r.Status == StatusOK }

// EncodeRequest serializes a request to a single wire record.
func EncodeRequest(req Request) ([]byte, error) {
	return json.Marshal(req)
}

// DecodeRequest parses a wire record into a Request. Oversize or
// unparseable input fails with domain.ErrMalformed.
func DecodeRequest(b []byte) (Request, error) {
	var req Request
	if err := decode(b, MaxRecordBytes, &req); err != nil {
		return Request{}, err
	}
	if req.Cmd == "" {
		return Request{}, fmt.Errorf("%w: missing cmd", domain.ErrMalformed)
	}
	return req, nil
}

// EncodeResponse serializes a response to a single wire record.
func EncodeResponse(resp Response) ([]byte, error) {
	return json.Marshal(resp)
}

// DecodeResponse parses a wire record into a Response.
func DecodeResponse(b []byte) (Response, error) {
	var resp Response
	if err := decode(b, MaxBatchBytes, &resp); err != nil {
		return Response{}, err
	}
	if resp.Status != StatusOK && resp.Status != StatusError {
		return Response{}, fmt.Errorf("%w: status %q", domain.ErrMalformed, resp.Status)
	}
	return resp, nil
}

func decode(b []byte, limit int, v any) error {
	if len(b) > limit {
		return fmt.Errorf("%w: record exceeds %d bytes", domain.ErrMalformed, limit)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}
	return nil
}
