package search

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// RemoveDuplicates drops every document whose set of words, ignoring
// frequencies, equals that of a document with a smaller id. One line per
// removed duplicate is written to stdout.
func RemoveDuplicates(server *Server) {
	RemoveDuplicatesTo(os.Stdout, server)
}

// RemoveDuplicatesTo is RemoveDuplicates writing its report to w.
func RemoveDuplicatesTo(w io.Writer, server *Server) {
	seen := make(map[string]struct{})
	var duplicates []int
	for _, id := range server.DocumentIDs() {
		key := wordSetKey(server.GetWordFrequencies(id))
		if _, ok := seen[key]; ok {
			duplicates = append(duplicates, id)
			continue
		}
		seen[key] = struct{}{}
	}
	for _, id := range duplicates {
		fmt.Fprintf(w, "Found duplicate document id %d\n", id)
		server.RemoveDocument(id)
	}
	if len(duplicates) > 0 {
		log.Debug().Int("removed", len(duplicates)).Msg("duplicate scan complete")
	}
}

// wordSetKey canonicalizes a document's word set. Words never contain
// spaces, so the joined form is collision-free.
func wordSetKey(freqs map[string]float64) string {
	words := make([]string, 0, len(freqs))
	for word := range freqs {
		words = append(words, word)
	}
	sort.Strings(words)
	return strings.Join(words, " ")
}
