package relay

import (
	"sync"

	"courier/internal/domain"
)

// Mailbox queues pending ciphertext per identity, FIFO by arrival.
// Queues come into being on first Enqueue; an identity nobody has
// written to drains empty rather than erroring. A Drain racing an
// Enqueue may include or exclude the in-flight entry (the boundary is
// intentionally unspecified), but no entry is ever duplicated or lost.
type Mailbox struct {
	shards [shardCount]mailboxShard
}

type mailboxShard struct {
	mu     sync.Mutex
	queues map[domain.Identity][]domain.QueuedMessage
}

// NewMailbox returns an empty mailbox set.
func NewMailbox() *Mailbox {
	m := &Mailbox{}
	for i := range m.shards {
		m.shards[i].queues = make(map[domain.Identity][]domain.QueuedMessage)
	}
	return m
}

// Enqueue appends msg to id's queue, creating the queue if absent.
func (m *Mailbox) Enqueue(id domain.Identity, msg domain.QueuedMessage) {
	msg.Ciphertext = append([]byte(nil), msg.Ciphertext...)
	s := &m.shards[shardIndex(string(id))]
	s.mu.Lock()
	s.queues[id] = append(s.queues[id], msg)
	s.mu.Unlock()
	queuedMessages.Inc()
}

// Drain removes and returns everything queued for id, oldest first.
// Removal is atomic with respect to other Drains of the same identity:
// each entry is delivered exactly once.
func (m *Mailbox) Drain(id domain.Identity) []domain.QueuedMessage {
	s := &m.shards[shardIndex(string(id))]
	s.mu.Lock()
	q := s.queues[id]
	delete(s.queues, id)
	s.mu.Unlock()
	queuedMessages.Sub(float64(len(q)))
	return q
}

// Requeue returns undelivered entries to the head of id's queue. They
// keep their relative order and stay ahead of entries enqueued since
// the drain, so FIFO delivery is preserved across a partial drain.
func (m *Mailbox) Requeue(id domain.Identity, entries []domain.QueuedMessage) {
	if len(entries) == 0 {
		return
	}
	s := &m.shards[shardIndex(string(id))]
	s.mu.Lock()
	merged := make([]domain.QueuedMessage, 0, len(entries)+len(s.queues[id]))
	merged = append(merged, entries...)
	merged = append(merged, s.queues[id]...)
	s.queues[id] = merged
	s.mu.Unlock()
	queuedMessages.Add(float64(len(entries)))
}

var _ domain.Mailbox = (*Mailbox)(nil)
