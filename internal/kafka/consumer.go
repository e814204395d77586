package kafka

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/booklab/booksearch/internal/service"
)

// RunConsumer reads catalog events and applies them to the book index:
// added books are written, removed books are deleted by title/author.
// Blocks until ctx is cancelled.
func RunConsumer(ctx context.Context, brokers []string, groupID string, topics []string, svc service.BookSearcher) {
	if len(brokers) == 0 || len(topics) == 0 {
		log.Println("kafka: brokers or topics empty, consumer not started")
		return
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})
	defer r.Close()

	log.Printf("kafka consumer: started, group=%s, topics=%v", groupID, topics)

	for {
		select {
		case <-ctx.Done():
			log.Println("kafka consumer: stopping")
			return
		default:
		}

		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("kafka read: %v", err)
			time.Sleep(time.Second)
			continue
		}

		processMessage(ctx, r, msg, svc)
	}
}

type committer interface {
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// processMessage applies one message and then commits its offset. Committing
// only after the handler has run means a crash mid-handle redelivers the
// event; the handlers are idempotent (exact-entry check, content-hash IDs),
// so at-least-once delivery is safe.
func processMessage(ctx context.Context, c committer, msg kafka.Message, svc service.BookSearcher) {
	if strings.HasPrefix(msg.Topic, "catalog.book.") {
		HandleBook(ctx, msg, svc)
	} else {
		log.Printf("kafka: unknown topic %q, skipping", msg.Topic)
	}

	if err := c.CommitMessages(ctx, msg); err != nil {
		log.Printf("kafka: commit message: %v", err)
	}
}
