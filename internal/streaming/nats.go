package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"insafe-lab/internal/config"
	"insafe-lab/pkg/logger"
)

const subjectRoot = "insafe"

// NATSPublisher handles publishing events to NATS JetStream
type NATSPublisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
	config config.NATSConfig
	logger *logger.Logger

	mu        sync.RWMutex
	connected bool
}

// NewNATSPublisher creates a new NATS publisher
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig, log *logger.Logger) (*NATSPublisher, error) {
	log = log.WithComponent("nats")

	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.StreamName == "" {
		cfg.StreamName = "INSAFE_SCANS"
	}
	cfg.Subjects = withDefaultSubjects(cfg.Subjects)

	log.Info().Str("url", cfg.URL).Str("stream", cfg.StreamName).Msg("connecting to NATS")

	conn, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streamCfg := jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "INSAFE scan and learning events",
		Subjects:    []string{subjectRoot + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      24 * time.Hour,
		MaxMsgs:     100000,
		MaxBytes:    100 * 1024 * 1024,
		Discard:     jetstream.DiscardOld,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	}

	stream, err := js.CreateOrUpdateStream(ctx, streamCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	log.Info().Str("stream", stream.CachedInfo().Config.Name).Msg("NATS stream ready")

	return &NATSPublisher{
		conn:      conn,
		js:        js,
		stream:    stream,
		config:    cfg,
		logger:    log,
		connected: true,
	}, nil
}

func withDefaultSubjects(s config.NATSSubjectsConfig) config.NATSSubjectsConfig {
	if s.ScanCompleted == "" {
		s.ScanCompleted = subjectRoot + ".scans.completed"
	}
	if s.ModelRetrained == "" {
		s.ModelRetrained = subjectRoot + ".learning.retrained"
	}
	if s.ReportCreated == "" {
		s.ReportCreated = subjectRoot + ".reports.created"
	}
	return s
}

// Close closes the NATS connection
func (p *NATSPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		p.conn.Close()
		p.connected = false
	}
}

// IsConnected returns whether NATS is connected
func (p *NATSPublisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected && p.conn.IsConnected()
}

// PublishEvent publishes an event to its configured subject
func (p *NATSPublisher) PublishEvent(ctx context.Context, event *Event) error {
	if !p.IsConnected() {
		return fmt.Errorf("NATS not connected")
	}

	subject := SubjectFor(p.config.Subjects, event)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug().
		Str("subject", subject).
		Str("event_type", string(event.Type)).
		Str("event_id", event.ID).
		Msg("published event")

	return nil
}

// SubjectFor maps an event to its NATS subject. Scan events are suffixed
// with the content type, e.g. insafe.scans.completed.sms.
func SubjectFor(subjects config.NATSSubjectsConfig, event *Event) string {
	subjects = withDefaultSubjects(subjects)
	switch event.Type {
	case EventTypeModelRetrained:
		return subjects.ModelRetrained
	case EventTypeReportCreated:
		return subjects.ReportCreated
	default:
		ct := event.ContentType
		if ct == "" {
			ct = "unknown"
		}
		return subjects.ScanCompleted + "." + ct
	}
}
