package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/memsearch/memsearch/search"
)

var rootCmd = &cobra.Command{
	Use:   "memsearch",
	Short: "In-memory TF-IDF search engine over short text documents",
	Long: `memsearch indexes a corpus of short text documents and answers
ranked TF-IDF queries with minus-word exclusion and status filtering.

The corpus is a JSON-lines file (optionally gzip-compressed) of records:
  {"id": 1, "text": "cat in the city", "status": "ACTUAL", "ratings": [1, 2, 3]}`,
	PersistentPreRunE: setupLogging,
	SilenceUsage:      true,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a single query, or an interactive prompt when no query is given",
	RunE:  runSearch,
}

var matchCmd = &cobra.Command{
	Use:   "match <query>",
	Short: "Match every document of the corpus against a query",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Report and remove duplicate documents",
	RunE:  runDedup,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print document and word counts of the indexed corpus",
	RunE:  runStats,
}

func init() {
	rootCmd.PersistentFlags().String("corpus", "corpus.jsonl", "corpus path (JSON lines, .gz accepted)")
	rootCmd.PersistentFlags().String("stop-words", "", "space-separated stop words")
	rootCmd.PersistentFlags().Bool("concurrent", false, "use the parallel query path")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("page-size", search.MaxResultDocumentCount, "results shown per page in the prompt")

	viper.SetEnvPrefix("MEMSEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(dedupCmd)
	rootCmd.AddCommand(statsCmd)
}

func setupLogging(_ *cobra.Command, _ []string) error {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

// buildServer constructs the engine from the configured stop words and
// loads the corpus into it.
func buildServer() (*search.Server, error) {
	server, err := search.NewServerFromText(viper.GetString("stop-words"))
	if err != nil {
		return nil, fmt.Errorf("invalid stop words: %w", err)
	}
	added, err := loadCorpus(viper.GetString("corpus"), server)
	if err != nil {
		return nil, err
	}
	log.Info().Int("documents", added).Msg("corpus indexed")
	return server, nil
}

func runSearch(_ *cobra.Command, args []string) error {
	server, err := buildServer()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		printQueryResults(server, strings.Join(args, " "))
		return nil
	}
	return runInteractiveSearch(server)
}

// runMatch mirrors the classic "match every document" helper: query errors
// are reported, not fatal.
func runMatch(_ *cobra.Command, args []string) error {
	server, err := buildServer()
	if err != nil {
		return err
	}
	rawQuery := args[0]
	fmt.Printf("Matching documents for query: %s\n", rawQuery)
	for _, id := range server.DocumentIDs() {
		words, status, err := matchDocument(server, rawQuery, id)
		if err != nil {
			fmt.Printf("Match error for query %q: %v\n", rawQuery, err)
			return nil
		}
		fmt.Printf("{ document_id = %d, status = %s, words = %s }\n", id, status, strings.Join(words, " "))
	}
	return nil
}

func runDedup(_ *cobra.Command, _ []string) error {
	server, err := buildServer()
	if err != nil {
		return err
	}
	before := server.DocumentCount()
	search.RemoveDuplicates(server)
	log.Info().
		Int("before", before).
		Int("after", server.DocumentCount()).
		Msg("duplicate removal finished")
	return nil
}

func runStats(_ *cobra.Command, _ []string) error {
	server, err := buildServer()
	if err != nil {
		return err
	}
	fmt.Printf("documents: %d\n", server.DocumentCount())
	fmt.Printf("words:     %d\n", server.WordCount())
	return nil
}

func findTopDocuments(server *search.Server, rawQuery string) ([]search.Document, error) {
	if viper.GetBool("concurrent") {
		return server.FindTopDocumentsConcurrent(rawQuery)
	}
	return server.FindTopDocuments(rawQuery)
}

func matchDocument(server *search.Server, rawQuery string, id int) ([]string, search.DocumentStatus, error) {
	if viper.GetBool("concurrent") {
		return server.MatchDocumentConcurrent(rawQuery, id)
	}
	return server.MatchDocument(rawQuery, id)
}

// printQueryResults runs one query and prints its documents, reporting
// malformed queries as a plain error line.
func printQueryResults(server *search.Server, rawQuery string) {
	fmt.Printf("Results for query: %s\n", rawQuery)
	docs, err := findTopDocuments(server, rawQuery)
	if err != nil {
		fmt.Printf("Search error: %v\n", err)
		return
	}
	if len(docs) == 0 {
		fmt.Println("No matches found.")
		return
	}
	for _, doc := range docs {
		fmt.Println(doc)
	}
}
