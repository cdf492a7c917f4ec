package consumer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Eursukkul/bitboletos/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// FavoriteCounter recomputes an event's favorite badge count.
type FavoriteCounter interface {
	Recount(ctx context.Context, eventID string) (int64, error)
}

type FavoriteConsumer struct {
	counter FavoriteCounter
	timeout time.Duration
}

func NewFavoriteConsumer(counter FavoriteCounter) *FavoriteConsumer {
	return &FavoriteConsumer{counter: counter, timeout: 5 * time.Second}
}

// Start recounts favorites for every favorite.toggled message until msgs is
// closed.
func (fc *FavoriteConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			fc.handleMessage(msg)
		}
		log.Println("[FavoriteConsumer] channel closed, stopping consumer")
	}()
}

func (fc *FavoriteConsumer) handleMessage(msg amqp.Delivery) {
	var toggled models.FavoriteToggled
	if err := json.Unmarshal(msg.Body, &toggled); err != nil || toggled.EventID == "" {
		log.Printf("[FavoriteConsumer] dropping malformed message: %v", err)
		msg.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), fc.timeout)
	defer cancel()

	count, err := fc.counter.Recount(ctx, toggled.EventID)
	if err != nil {
		log.Printf("[FavoriteConsumer] failed to recount event %s: %v", toggled.EventID, err)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[FavoriteConsumer] event %s now has %d favorites", toggled.EventID, count)
	msg.Ack(false)
}
