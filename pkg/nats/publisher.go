// Package nats publishes committed board snapshots to a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dowjanes/coaching-dashboard/pkg/board"
)

// conn is the part of *nats.Conn the publisher uses
type conn interface {
	PublishMsg(msg *nats.Msg) error
	FlushTimeout(timeout time.Duration) error
	IsClosed() bool
	IsConnected() bool
	Close()
}

// Publisher handles publishing board snapshots to NATS
type Publisher struct {
	conn    conn
	subject string
	logger  *slog.Logger
}

// Config holds NATS publisher configuration
type Config struct {
	URL             string        `yaml:"url"`
	Subject         string        `yaml:"subject"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	ReconnectWait   time.Duration `yaml:"reconnect_wait"`
	MaxReconnects   int           `yaml:"max_reconnects"`
	PingInterval    time.Duration `yaml:"ping_interval"`
	MaxPingsOut     int           `yaml:"max_pings_out"`
	ReconnectBuffer int           `yaml:"reconnect_buffer"`
}

// DefaultConfig returns a default NATS configuration
func DefaultConfig() *Config {
	return &Config{
		URL:             nats.DefaultURL,
		Subject:         "coaching.appointments",
		ConnectTimeout:  5 * time.Second,
		ReconnectWait:   2 * time.Second,
		MaxReconnects:   10,
		PingInterval:    2 * time.Minute,
		MaxPingsOut:     2,
		ReconnectBuffer: 5 * 1024 * 1024, // 5MB
	}
}

// Message is the payload published for each committed snapshot
type Message struct {
	board.Snapshot
	Count int `json:"count"`
}

// NewPublisher connects to NATS with the given configuration
func NewPublisher(config *Config, logger *slog.Logger) (*Publisher, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if logger == nil {
		logger = slog.Default()
	}

	options := []nats.Option{
		nats.Name("coaching-dashboard"),
		nats.Timeout(config.ConnectTimeout),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.PingInterval(config.PingInterval),
		nats.MaxPingsOutstanding(config.MaxPingsOut),
		nats.ReconnectBufSize(config.ReconnectBuffer),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", config.URL, err)
	}

	logger.Info("NATS publisher initialized",
		"url", config.URL,
		"subject", config.Subject,
		"connected_url", nc.ConnectedUrl())

	return newPublisher(nc, config.Subject, logger), nil
}

func newPublisher(c conn, subject string, logger *slog.Logger) *Publisher {
	if subject == "" {
		subject = DefaultConfig().Subject
	}
	return &Publisher{conn: c, subject: subject, logger: logger}
}

// PublishSnapshot publishes one committed snapshot. The run id is sent as
// Nats-Msg-Id so JetStream consumers can drop duplicates.
func (p *Publisher) PublishSnapshot(ctx context.Context, snapshot board.Snapshot) error {
	if err := p.IsHealthy(); err != nil {
		return err
	}

	data, err := json.Marshal(Message{Snapshot: snapshot, Count: len(snapshot.Appointments)})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	if snapshot.RunID != "" {
		msg.Header.Set(nats.MsgIdHdr, snapshot.RunID)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		if err := p.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("failed to publish snapshot: %w", err)
		}
	}

	p.logger.Debug("Published snapshot",
		"subject", p.subject,
		"run_id", snapshot.RunID,
		"date", snapshot.Date,
		"appointments", len(snapshot.Appointments))

	return nil
}

// Hook adapts the publisher to a board commit hook. Publish failures are
// logged and never affect the board.
func (p *Publisher) Hook() board.CommitHook {
	return func(ctx context.Context, snapshot board.Snapshot, runErr error) {
		if err := p.PublishSnapshot(ctx, snapshot); err != nil {
			p.logger.Error("Failed to publish snapshot", "run_id", snapshot.RunID, "error", err)
		}
	}
}

// Flush ensures all published messages have been sent
func (p *Publisher) Flush(timeout time.Duration) error {
	if p.conn == nil || p.conn.IsClosed() {
		return fmt.Errorf("NATS connection is not available")
	}

	if err := p.conn.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("failed to flush NATS messages: %w", err)
	}

	return nil
}

// IsHealthy checks if the NATS connection is usable
func (p *Publisher) IsHealthy() error {
	if p.conn == nil {
		return fmt.Errorf("NATS connection is nil")
	}

	if p.conn.IsClosed() {
		return fmt.Errorf("NATS connection is closed")
	}

	if !p.conn.IsConnected() {
		return fmt.Errorf("NATS is not connected")
	}

	return nil
}

// Close flushes pending messages and closes the connection
func (p *Publisher) Close() error {
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.Flush(5 * time.Second); err != nil {
			p.logger.Warn("Failed to flush messages on close", "error", err)
		}

		p.conn.Close()
		p.logger.Info("NATS publisher closed")
	}
	return nil
}
