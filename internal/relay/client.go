package relay

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"sync"
	"time"

	"courier/internal/domain"
	"courier/internal/wire"
)

// Client speaks the wire protocol over one TCP connection. Exchanges are
// strictly sequential: the mutex holds the connection for a full
// request/response pair, so a Client is safe for concurrent use even
// though the protocol forbids pipelining.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to a relay at addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	r := bufio.NewReaderSize(conn, 64*1024)
	return &Client{conn: conn, r: r}, nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// Register publishes publicKey as id's current key.
func (c *Client) Register(ctx context.Context, id domain.Identity, publicKey []byte) error {
	resp, err := c.roundTrip(ctx, wire.Request{
		Cmd:       wire.CmdRegister,
		Identity:  id,
		PublicKey: hex.EncodeToString(publicKey),
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("relay: register: %s", resp.Detail)
	}
	return nil
}

// FetchKey looks up target's current public key. A relay-side miss
// surfaces domain.ErrNotFound.
func (c *Client) FetchKey(ctx context.Context, id, target domain.Identity) ([]byte, error) {
	resp, err := c.roundTrip(ctx, wire.Request{
		Cmd:      wire.CmdFetchKey,
		Identity: id,
		Target:   target,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %s (%q)", domain.ErrNotFound, resp.Detail, target)
	}
	key, err := hex.DecodeString(resp.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad key hex: %v", domain.ErrMalformed, err)
	}
	return key, nil
}

// Send queues ciphertext for target. Succeeds even if target has never
// registered; the entry is undeliverable until they do.
func (c *Client) Send(ctx context.Context, id, target domain.Identity, ciphertext []byte) error {
	resp, err := c.roundTrip(ctx, wire.Request{
		Cmd:        wire.CmdSend,
		Identity:   id,
		Target:     target,
		Ciphertext: hex.EncodeToString(ciphertext),
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("relay: send: %s", resp.Detail)
	}
	return nil
}

// Receive drains id's mailbox. The returned entries are consumed on the
// relay whether or not the caller manages to decrypt them.
func (c *Client) Receive(ctx context.Context, id domain.Identity) ([]domain.QueuedMessage, error) {
	resp, err := c.roundTrip(ctx, wire.Request{Cmd: wire.CmdReceive, Identity: id})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("relay: receive: %s", resp.Detail)
	}
	out := make([]domain.QueuedMessage, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ct, err := hex.DecodeString(m.Ciphertext)
		if err != nil {
			return nil, fmt.Errorf("%w: bad ciphertext hex from %q: %v", domain.ErrMalformed, m.From, err)
		}
		out = append(out, domain.QueuedMessage{From: m.From, Ciphertext: ct})
	}
	return out, nil
}

// roundTrip writes one request line and reads one response line.
func (c *Client) roundTrip(ctx context.Context, req wire.Request) (wire.Response, error) {
	b, err := wire.EncodeRequest(req)
	if err != nil {
		return wire.Response{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return wire.Response{}, err
	}

	if _, err := c.conn.Write(append(b, '\n')); err != nil {
		return wire.Response{}, fmt.Errorf("relay write: %w", err)
	}
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		return wire.Response{}, fmt.Errorf("relay read: %w", err)
	}
	return wire.DecodeResponse(line[:len(line)-1])
}

var _ domain.RelayClient = (*Client)(nil)
