package main

import (
	"log"

	"github.com/booklab/booksearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
