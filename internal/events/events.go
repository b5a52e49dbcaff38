// Package events публикует доменные события ассоциации в RabbitMQ после
// успешной фиксации транзакции.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/aviary/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/aviary/internal/lib/sl"
)

// Типы событий совпадают с ключами маршрутизации.
const (
	AwardRecorded    = "award.recorded"
	AwardDeleted     = "award.deleted"
	MemberDeleted    = "member.deleted"
	InventoryUpdated = "inventory.updated"
)

// Envelope: сообщение, уходящее в брокер.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	ActorID    int64     `json:"actor_id"`
	Payload    any       `json:"payload"`
}

// AwardPayload описывает записанную или удалённую награду.
type AwardPayload struct {
	AwardID     int64     `json:"award_id"`
	UserID      int64     `json:"user_id"`
	ContestName string    `json:"contest_name"`
	Position    string    `json:"position"`
	AwardDate   time.Time `json:"award_date"`
}

// MemberPayload описывает удалённого пользователя.
type MemberPayload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// InventoryPayload описывает изменение инвентаря члена ассоциации.
type InventoryPayload struct {
	UserID  int64   `json:"user_id"`
	LineIDs []int64 `json:"line_ids"`
}

// Publisher публикует событие.
type Publisher interface {
	Publish(ctx context.Context, eventType string, actorID int64, payload any) error
}

// Queues возвращает очереди, привязываемые к обменнику событий.
func Queues() []rabbitmq.QueueConfig {
	return []rabbitmq.QueueConfig{
		{QueueName: "aviary.awards", RoutingKey: AwardRecorded},
		{QueueName: "aviary.awards", RoutingKey: AwardDeleted},
		{QueueName: "aviary.members", RoutingKey: MemberDeleted},
		{QueueName: "aviary.inventory", RoutingKey: InventoryUpdated},
	}
}

// AMQPPublisher публикует события в direct-обменник.
type AMQPPublisher struct {
	mu       sync.Mutex
	ch       rabbitmq.Channel
	exchange string
	now      func() time.Time
}

// NewAMQPPublisher создаёт издателя поверх открытого канала.
func NewAMQPPublisher(ch rabbitmq.Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange, now: time.Now}
}

// Publish отправляет событие с ключом маршрутизации eventType.
func (p *AMQPPublisher) Publish(ctx context.Context, eventType string, actorID int64, payload any) error {
	const op = "events.Publish"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	env := Envelope{
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		ActorID:    actorID,
		Payload:    payload,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, eventType, env); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Noop используется, когда брокер не настроен.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(context.Context, string, int64, any) error { return nil }

// Notify публикует событие и только логирует ошибку: зафиксированная
// транзакция не откатывается из-за брокера.
func Notify(ctx context.Context, log *slog.Logger, p Publisher, eventType string, actorID int64, payload any) {
	if err := p.Publish(ctx, eventType, actorID, payload); err != nil {
		log.Warn("failed to publish event", slog.String("event", eventType), sl.Err(err))
	}
}
