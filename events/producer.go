package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/MilanKumarMishra/ecommerce-platform/models"
)

const (
	TopicOrders      = "shop.orders"
	EventOrderPlaced = "OrderPlaced"
	producerName     = "storefront-api"
)

// Envelope is the versioned wrapper every published event travels in.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID uint               `json:"order_id"`
	UserID  string             `json:"user_id"`
	Total   float64            `json:"total"`
	Items   []models.OrderItem `json:"items"`
}

// Producer publishes order events asynchronously through an inbox channel so
// request handlers never block on the broker. A nil *Producer is valid and
// drops everything, which is how deployments without kafka run.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	log     *zap.Logger
}

func NewProducer(brokers []string, log *zap.Logger) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        TopicOrders,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, 256),
		closeCh: make(chan struct{}),
		log:     log,
	}
}

// Start drains the inbox until ctx is cancelled, then flushes what is
// already buffered. The inbox is never closed: publishers may still be
// selecting on it when the drain loop exits, and a send on a closed channel
// would panic. Late events are dropped via the closeCh guard instead.
func (p *Producer) Start(ctx context.Context) {
	if p == nil {
		return
	}
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				for {
					select {
					case m := <-p.inbox:
						p.write(m)
					default:
						_ = p.w.Close()
						return
					}
				}
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.log.Warn("order event publish failed", zap.Error(err))
	}
}

// OrderPlaced enqueues an OrderPlaced envelope keyed by user id. Non-blocking:
// when the inbox is full the event is dropped and logged rather than stalling
// checkout.
func (p *Producer) OrderPlaced(order models.Order) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(OrderPlacedPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
		Total:   order.Total,
		Items:   order.Items,
	})
	if err != nil {
		return
	}
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    EventOrderPlaced,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     producerName,
		Payload:      payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return
	}
	msg := kafka.Message{Key: []byte(order.UserID), Value: value, Time: time.Now()}
	select {
	case <-p.closeCh:
		p.log.Warn("producer stopped, dropping event",
			zap.Uint("order_id", order.ID))
		return
	default:
	}
	select {
	case p.inbox <- msg:
	default:
		p.log.Warn("order event inbox full, dropping event",
			zap.Uint("order_id", order.ID))
	}
}
