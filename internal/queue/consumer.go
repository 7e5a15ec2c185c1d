// Package queue contains the background consumer that listens to the
// guest.changed queue, purges cached guest lists and writes a change log to
// logs/guests.log.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/wedding-guests/internal/logger"
)

// DefaultLogPath is where change lines are appended when Handler.LogPath is empty.
var DefaultLogPath = filepath.Join("logs", "guests.log")

// Handler applies a guest change event.  Purge drops cached guest lists and
// may be nil when no cache is configured.
type Handler struct {
    Purge   func(ctx context.Context) error
    LogPath string

    mu sync.Mutex
}

// PurgeError reports a cache purge that failed after the change line was
// logged.  Cached guest lists then expire on their TTL.
type PurgeError struct {
    Err error
}

func (e *PurgeError) Error() string { return "purge cache: " + e.Err.Error() }
func (e *PurgeError) Unwrap() error { return e.Err }

// Handle purges the cache and appends one line to the change log.  A purge
// failure is returned as *PurgeError after the log line is written so the
// event is not lost from the log.
func (h *Handler) Handle(ctx context.Context, ev GuestChangedEvent) error {
    var purgeErr error
    if h.Purge != nil {
        if err := h.Purge(ctx); err != nil {
            purgeErr = &PurgeError{Err: err}
        }
    }
    if err := h.appendLine(ev); err != nil {
        return err
    }
    return purgeErr
}

// PublishGuestChanged applies the event in-process.  The server uses the
// handler as its publisher when no broker is configured.
func (h *Handler) PublishGuestChanged(ctx context.Context, ev GuestChangedEvent) error {
    return h.Handle(ctx, ev)
}

func (h *Handler) appendLine(ev GuestChangedEvent) error {
    fpath := h.LogPath
    if fpath == "" {
        fpath = DefaultLogPath
    }
    h.mu.Lock()
    defer h.mu.Unlock()

    if err := os.MkdirAll(filepath.Dir(fpath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders an event as a single human-friendly log line.
func FormatLine(ev GuestChangedEvent) string {
    action := "updated"
    if ev.Created {
        action = "created"
    }
    slots := "[]"
    if len(ev.Slots) > 0 {
        slots = fmt.Sprintf("[%s]", strings.Join(ev.Slots, ","))
    }
    return fmt.Sprintf("[%s] Guest %s | guest_id=%d | number=%d | name=%q | media=%s\n",
        ev.ChangedAt, action, ev.GuestID, ev.Number, ev.Name, slots)
}

// StartGuestConsumer connects to RabbitMQ, declares the guest.changed queue
// (durable), and hands every message to h.  It reconnects with backoff
// until ctx is cancelled, then returns ctx.Err().  A message that cannot be
// decoded or handled is rejected without requeue so a poison message cannot
// spin the loop.
func StartGuestConsumer(ctx context.Context, url string, h *Handler) error {
    log := logger.With("queue", GuestChangedQueue)
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warnw("guest-consumer: failed to dial broker", "error", err, "retry_in", backoff.String())
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect
        log.Infow("guest-consumer: connected")

        err = consumeLoop(ctx, conn, h)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warnw("guest-consumer: consume loop ended; reconnecting", "error", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, h *Handler) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logger.L().Warnw("guest-consumer: set QoS failed", "error", err)
    }

    _, err = ch.QueueDeclare(GuestChangedQueue, true, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(GuestChangedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            err := handleMessage(ctx, h, d.Body)
            if err != nil {
                logger.L().Warnw("guest-consumer: handle message failed", "error", err)
            }
            if settled(err) {
                _ = d.Ack(false)
            } else {
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            }
        }
    }
}

func handleMessage(ctx context.Context, h *Handler, body []byte) error {
    var ev GuestChangedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    return h.Handle(ctx, ev)
}

// settled reports whether a delivery is done with.  A failed purge still
// counts: the line is in the change log and redelivery would log it twice.
func settled(err error) bool {
    var pe *PurgeError
    return err == nil || errors.As(err, &pe)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
