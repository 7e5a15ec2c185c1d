// Package queue defines message payloads exchanged over the message broker.
package queue

// GuestChangedQueue is the durable queue guest change events are sent to.
const GuestChangedQueue = "guest.changed"

// GuestChangedEvent is published after an admin submission was stored.  It
// carries enough for consumers to purge cached guest lists and keep a change
// log without querying the primary database.
type GuestChangedEvent struct {
    GuestID   uint64   `json:"guest_id"`
    Number    int      `json:"number"`
    Name      string   `json:"name"`
    Created   bool     `json:"created"`
    Slots     []string `json:"slots"`
    ChangedAt string   `json:"changed_at"`
}
