package service

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/wedding-guests/internal/logger"
    q "github.com/iliyamo/wedding-guests/internal/queue"
)

// RabbitPublisher sends domain events to RabbitMQ.  It dials the broker per
// event; admin writes are rare.
type RabbitPublisher struct {
    URL string
}

// defaultDialTimeout applies when the caller's context has no deadline.
const defaultDialTimeout = 5 * time.Second

// dialTimeout returns how long a dial may take under ctx.
func dialTimeout(ctx context.Context) time.Duration {
    if dl, ok := ctx.Deadline(); ok {
        if d := time.Until(dl); d > 0 {
            return d
        }
        return time.Millisecond
    }
    return defaultDialTimeout
}

// PublishGuestChanged publishes a GuestChangedEvent to the "guest.changed"
// queue.  The function never panics; any error is logged and returned.
// Messages are marked as persistent.
func (p *RabbitPublisher) PublishGuestChanged(ctx context.Context, event q.GuestChangedEvent) error {
    log := logger.With("queue", q.GuestChangedQueue)

    if err := ctx.Err(); err != nil {
        return err
    }
    conn, err := amqp.DialConfig(p.URL, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(dialTimeout(ctx)),
    })
    if err != nil {
        log.Warnw("rabbitmq: dial failed", "error", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Warnw("rabbitmq: channel open failed", "error", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.GuestChangedQueue, // name
        true,                // durable
        false,               // autoDelete
        false,               // exclusive
        false,               // noWait
        nil,                 // args
    ); err != nil {
        log.Warnw("rabbitmq: queue declare failed", "error", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Warnw("rabbitmq: marshal event failed", "error", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",                  // default exchange
        q.GuestChangedQueue, // routing key = queue name
        false,               // mandatory
        false,               // immediate
        pub,
    ); err != nil {
        log.Warnw("rabbitmq: publish failed", "error", err)
        return err
    }

    return nil
}
