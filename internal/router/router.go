package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/booklab/booksearch/internal/handler"
)

func New(bookHandler *handler.BookHandler) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.GET("/books", bookHandler.ListBooks)
	r.POST("/books", bookHandler.AddBook)
	r.DELETE("/books", bookHandler.DeleteBook)
	r.GET("/books/search", bookHandler.SearchBooks)
	r.GET("/books/aggregate", bookHandler.AggregateBooks)
	r.POST("/books/import", bookHandler.ImportBooks)
	return r
}
