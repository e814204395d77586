package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/booklab/booksearch/internal/model"
	"github.com/booklab/booksearch/internal/service"
	"github.com/booklab/booksearch/internal/validator"
)

type BookHandler struct {
	svc       service.BookSearcher
	validator *validator.Validator
}

func NewBookHandler(svc service.BookSearcher) *BookHandler {
	return &BookHandler{
		svc:       svc,
		validator: validator.New(),
	}
}

// AddBook POST /books
func (h *BookHandler) AddBook(c *gin.Context) {
	var book model.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	book.Trim()
	if err := h.validator.ValidateBook(book); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	if h.svc.HasExactEntry(ctx, book) {
		c.JSON(http.StatusConflict, gin.H{"error": "book already exists"})
		return
	}
	if !h.svc.Save(ctx, book) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "the search backend did not confirm the write"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListBooks GET /books
func (h *BookHandler) ListBooks(c *gin.Context) {
	books := h.svc.ListAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"books": books, "total": len(books)})
}

// SearchBooks GET /books/search?field=title|author|title_author|genre|publisher&value=...&author=...
// field=title_author matches value against the title and the author query
// parameter against the author.
func (h *BookHandler) SearchBooks(c *gin.Context) {
	field := c.Query("field")
	value := c.Query("value")
	if err := h.validator.ValidateSearch(field, value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	var books []model.Book
	switch field {
	case "title":
		books = h.svc.FindByTitle(ctx, value)
	case "author":
		books = h.svc.FindByAuthor(ctx, value)
	case "title_author":
		author := c.Query("author")
		if author == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "an author query parameter is required for title_author search"})
			return
		}
		books = h.svc.FindByTitleAndAuthor(ctx, value, author)
	case "genre":
		books = h.svc.FindByGenre(ctx, value)
	case "publisher":
		books = h.svc.FindByPublisherKeyword(ctx, value)
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "total": len(books)})
}

// DeleteBook DELETE /books?title=...&author=...
func (h *BookHandler) DeleteBook(c *gin.Context) {
	title := c.Query("title")
	author := c.Query("author")
	if title == "" || author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and author query parameters are required"})
		return
	}
	if !h.svc.DeleteByTitleAuthor(c.Request.Context(), title, author) {
		c.JSON(http.StatusNotFound, gin.H{"deleted": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// AggregateBooks GET /books/aggregate?field=publisher.keyword&name=publishers
func (h *BookHandler) AggregateBooks(c *gin.Context) {
	field := c.Query("field")
	if err := h.validator.ValidateAggregate(field); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := c.DefaultQuery("name", "buckets")
	buckets := h.svc.AggregateByField(c.Request.Context(), name, field)
	c.JSON(http.StatusOK, gin.H{"buckets": buckets})
}

// ImportBooks POST /books/import — bulk import of a JSON array of books.
func (h *BookHandler) ImportBooks(c *gin.Context) {
	var books []model.Book
	if err := c.ShouldBindJSON(&books); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	for i := range books {
		books[i].Trim()
		if err := h.validator.ValidateBook(books[i]); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if !h.svc.BulkImport(c.Request.Context(), books) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "bulk import did not fully succeed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "imported": len(books)})
}
