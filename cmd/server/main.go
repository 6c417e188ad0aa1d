package main

import (
	"context"
	"os"
)

// @title           ExamCraft API
// @version         1.0
// @description     Flashcard study service: topics, mastery-weighted study decks and LLM-generated cards.

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
