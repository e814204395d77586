package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/booklab/booksearch/internal/model"
	"github.com/booklab/booksearch/internal/service"
	"github.com/booklab/booksearch/internal/validator"
)

// BookEvent is one message from the catalog.book.* topics. The book fields
// are flattened into the event payload.
type BookEvent struct {
	Event     string `json:"event"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Genre     string `json:"genre,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Year      string `json:"year,omitempty"`
	Price     string `json:"price,omitempty"`
}

// HandleBook applies one catalog event to the index. Invalid events are
// logged and skipped; the consumer never stops for a bad message.
func HandleBook(ctx context.Context, msg kafka.Message, svc service.BookSearcher) {
	topic := msg.Topic
	var ev BookEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		log.Printf("kafka: [%s] unmarshal book event: %v", topic, err)
		return
	}
	if ev.Title == "" || ev.Author == "" {
		log.Printf("kafka: [%s] missing title or author, skipping", topic)
		return
	}

	switch ev.Event {
	case "book.removed":
		if !svc.DeleteByTitleAuthor(ctx, ev.Title, ev.Author) {
			log.Printf("kafka: [%s] no book deleted for %q / %q", topic, ev.Title, ev.Author)
			return
		}
		log.Printf("kafka: [%s] deleted book %q / %q", topic, ev.Title, ev.Author)
	default: // book.added and anything unrecognized indexes the record
		book := model.Book{
			Title:     ev.Title,
			Author:    ev.Author,
			Genre:     ev.Genre,
			Publisher: ev.Publisher,
			Year:      ev.Year,
			Price:     ev.Price,
		}
		book.Trim()
		if err := validator.New().ValidateBook(book); err != nil {
			log.Printf("kafka: [%s] invalid book event: %v", topic, err)
			return
		}
		if svc.HasExactEntry(ctx, book) {
			log.Printf("kafka: [%s] book %q already indexed, skipping", topic, book.Title)
			return
		}
		if !svc.Save(ctx, book) {
			log.Printf("kafka: [%s] index book %q: write not confirmed", topic, book.Title)
			return
		}
		log.Printf("kafka: [%s] indexed book %q", topic, book.Title)
	}
}
