package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSSource consumes call events published on a NATS subject
type NATSSource struct {
	url     string
	subject string
	logger  zerolog.Logger
}

// NewNATSSource creates a source for the given server and subject
func NewNATSSource(url, subject string, logger zerolog.Logger) *NATSSource {
	return &NATSSource{
		url:     url,
		subject: subject,
		logger:  logger.With().Str("source", "nats").Str("subject", subject).Logger(),
	}
}

func (s *NATSSource) Name() string { return "nats" }

// Start connects and subscribes. The subscription is drained when ctx is done.
func (s *NATSSource) Start(ctx context.Context, processor CallProcessor) error {
	nc, err := nats.Connect(s.url,
		nats.Name("salesmetrics"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				s.logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			s.logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return err
	}

	sub, err := nc.Subscribe(s.subject, s.handler(ctx, processor))
	if err != nil {
		nc.Close()
		return err
	}

	s.logger.Info().Str("url", s.url).Msg("subscribed to call events")

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			s.logger.Warn().Err(err).Msg("failed to unsubscribe")
		}
		if err := nc.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain NATS connection")
		}
		s.logger.Info().Msg("NATS source stopped")
	}()

	return nil
}

// handler builds the subscription callback. Messages delivered while the
// connection drains on shutdown must still be stored, so the callback keeps
// ctx values but not its cancellation.
func (s *NATSSource) handler(ctx context.Context, processor CallProcessor) nats.MsgHandler {
	msgCtx := context.WithoutCancel(ctx)
	return func(msg *nats.Msg) {
		s.handle(msgCtx, processor, msg)
	}
}

// handle processes one message. Request/reply callers get the result back.
func (s *NATSSource) handle(ctx context.Context, processor CallProcessor, msg *nats.Msg) {
	reply, err := s.process(ctx, processor, msg.Data)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to process call event")
	}
	if msg.Reply == "" {
		return
	}
	if err := msg.Respond(reply); err != nil {
		s.logger.Warn().Err(err).Msg("failed to reply")
	}
}

// process decodes and forwards one payload, returning the reply body
func (s *NATSSource) process(ctx context.Context, processor CallProcessor, data []byte) ([]byte, error) {
	var event types.CallEvent
	if err := json.Unmarshal(data, &event); err != nil {
		body, _ := json.Marshal(map[string]string{"error": "invalid event"})
		return body, err
	}

	result, err := processor.ProcessCall(ctx, &event)
	if err != nil {
		body, _ := json.Marshal(map[string]string{"error": err.Error()})
		return body, err
	}

	body, err := json.Marshal(result)
	return body, err
}
