package search

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ProcessQueries runs every query against the server concurrently and
// returns one result list per query, in input order. All queries run to
// completion; the first error observed is returned.
func ProcessQueries(server *Server, queries []string) ([][]Document, error) {
	results := make([][]Document, len(queries))
	var g errgroup.Group
	for i, rawQuery := range queries {
		i, rawQuery := i, rawQuery
		g.Go(func() error {
			docs, err := server.FindTopDocuments(rawQuery)
			if err != nil {
				return err
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debug().Int("queries", len(queries)).Msg("processed query batch")
	return results, nil
}

// ProcessQueriesJoined flattens ProcessQueries into a single list,
// concatenated in input-query order.
func ProcessQueriesJoined(server *Server, queries []string) ([]Document, error) {
	perQuery, err := ProcessQueries(server, queries)
	if err != nil {
		return nil, err
	}
	var joined []Document
	for _, docs := range perQuery {
		joined = append(joined, docs...)
	}
	return joined, nil
}
