package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/memsearch/memsearch/search"
)

// runInteractiveSearch handles the interactive query loop.
func runInteractiveSearch(server *search.Server) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     ".memsearch_history.tmp",
		InterruptPrompt: "^C\n",
		EOFPrompt:       "exit\n",
		HistoryLimit:    100,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	fmt.Println("\nEnter your search query (press Ctrl+C or type 'exit' to quit):")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				fmt.Println("\nExiting...")
				return nil
			}
			continue // allow clearing the line with Ctrl+C
		}
		if err == io.EOF || strings.TrimSpace(line) == "exit" {
			fmt.Println("\nExiting...")
			return nil
		}
		rawQuery := strings.TrimSpace(line)
		if rawQuery == "" {
			continue
		}

		start := time.Now()
		docs, err := findTopDocuments(server, rawQuery)
		if err != nil {
			fmt.Printf("Search error: %v\n", err)
			continue
		}
		log.Debug().
			Str("query", rawQuery).
			Dur("took", time.Since(start)).
			Int("results", len(docs)).
			Msg("query executed")

		fmt.Printf("\nSearch Results for: %q\n", rawQuery)
		displayResults(docs, viper.GetInt("page-size"))
	}
}

// displayResults prints all ranked documents at once, drawing a separator
// rule after every pageSize of them; it does not pause between pages.
func displayResults(docs []search.Document, pageSize int) {
	if len(docs) == 0 {
		fmt.Println("No matches found.")
		return
	}
	if pageSize <= 0 {
		pageSize = search.MaxResultDocumentCount
	}

	fmt.Println("\nResults (sorted by relevance):")
	fmt.Println(strings.Repeat("-", 80))
	for i, doc := range docs {
		if i > 0 && i%pageSize == 0 {
			fmt.Println(strings.Repeat("-", 80))
		}
		fmt.Printf("%d. %s\n", i+1, doc)
	}
	fmt.Println(strings.Repeat("-", 80))
}
