package main

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/memsearch/memsearch/search"
)

// corpusRecord is one JSON-lines entry of the corpus file.
type corpusRecord struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Status  string `json:"status"`
	Ratings []int  `json:"ratings"`
}

// loadCorpus reads a JSON-lines corpus into the server and returns how many
// documents were added. Records the engine rejects are logged and skipped.
func loadCorpus(path string, server *search.Server) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("open corpus: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	added := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec corpusRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return added, fmt.Errorf("corpus line %d: %w", line, err)
		}
		if err := addRecord(server, rec); err != nil {
			if errors.Is(err, search.ErrInvalidArgument) {
				log.Warn().Int("id", rec.ID).Err(err).Msg("document rejected")
				continue
			}
			return added, err
		}
		added++
	}
	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("read corpus: %w", err)
	}
	return added, nil
}

func addRecord(server *search.Server, rec corpusRecord) error {
	status, err := search.ParseDocumentStatus(rec.Status)
	if err != nil {
		return err
	}
	return server.AddDocument(rec.ID, rec.Text, status, rec.Ratings)
}
