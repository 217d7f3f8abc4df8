package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/markov84/MarkLight-Ltd/internal/kafka"
	"github.com/markov84/MarkLight-Ltd/internal/orders"
	"github.com/markov84/MarkLight-Ltd/internal/redisx"
)

// Service consumes order.placed events and mails the customer a
// confirmation. Kafka redelivers on consumer failure, so every event is
// fenced with a Redis SETNX key before the mail goes out.
type Service struct {
	Redis       *redis.Client
	Mail        Mailer
	ServiceName string
	Log         *slog.Logger
}

// Mailer matches auth.Mailer; both packages share the SMTPMailer.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// HandleOrderPlaced is wired as the Kafka consumer handler.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	dkey := s.dedupKey(env.EventID)
	fresh, err := redisx.SetNXOnce(ctx, s.Redis, dkey, redisx.TTLDedup)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}
	if p.Email == "" {
		s.Log.Info("order has no email, skipping confirmation", "order_id", p.OrderID)
		return nil
	}

	body := confirmationBody(p)
	if err := s.Mail.Send(p.Email, "Your order is confirmed", body); err != nil {
		// release the fence so a redelivery can retry the send
		_ = s.Redis.Del(ctx, dkey).Err()
		return err
	}
	s.Log.Info("order confirmation sent", "order_id", p.OrderID, "producer", env.Producer)
	return nil
}

// dedupKey namespaces the fence per consuming service, so two consumers of
// the same event stream never share fences.
func (s *Service) dedupKey(eventID string) string {
	name := s.ServiceName
	if name == "" {
		name = "notifier"
	}
	return fmt.Sprintf(redisx.KeyDedup, name, eventID)
}

func confirmationBody(p orders.OrderPlacedPayload) string {
	name := p.CustomerName
	if name == "" {
		name = "customer"
	}
	return fmt.Sprintf(
		"<p>Dear %s,</p><p>we received your order <b>%s</b> for a total of %d.%02d %s. We will let you know once it ships.</p>",
		name, p.OrderID, p.GrandTotalCents/100, p.GrandTotalCents%100, p.Currency)
}
