package search

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// FindTopDocumentsConcurrent is the parallel form of FindTopDocuments.
func (s *Server) FindTopDocumentsConcurrent(rawQuery string) ([]Document, error) {
	return s.FindTopDocumentsWithStatusConcurrent(rawQuery, StatusActual)
}

// FindTopDocumentsWithStatusConcurrent is the parallel form of
// FindTopDocumentsWithStatus.
func (s *Server) FindTopDocumentsWithStatusConcurrent(rawQuery string, status DocumentStatus) ([]Document, error) {
	return s.FindTopDocumentsFilteredConcurrent(rawQuery, statusPredicate(status))
}

// FindTopDocumentsFilteredConcurrent ranks documents like
// FindTopDocumentsFiltered, accumulating relevance across plus words in
// parallel on a sharded map. Results are equal to the sequential form up
// to floating-point rounding within the ranking epsilon.
func (s *Server) FindTopDocumentsFilteredConcurrent(rawQuery string, pred DocumentPredicate) ([]Document, error) {
	q, err := s.parseQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	relevance := NewConcurrentMap(relevanceShardCount)
	var wg sync.WaitGroup
	for _, word := range q.plusWords {
		wg.Add(1)
		go func(word string) {
			defer wg.Done()
			postings, ok := s.wordDocFreqs[word]
			if !ok {
				return
			}
			idf := s.wordInverseDocumentFreq(word)
			for id, tf := range postings {
				data := s.documents[id]
				if pred(id, data.status, data.rating) {
					relevance.Update(id, func(value *float64) { *value += tf * idf })
				}
			}
		}(word)
	}
	// every plus-word contribution settles before minus-word erasure starts
	wg.Wait()

	for _, word := range q.minusWords {
		wg.Add(1)
		go func(word string) {
			defer wg.Done()
			for id := range s.wordDocFreqs[word] {
				relevance.Erase(id)
			}
		}(word)
	}
	wg.Wait()

	matched := s.collectDocuments(relevance.BuildOrdinaryMap())
	return topDocuments(matched), nil
}

// MatchDocumentConcurrent is the parallel form of MatchDocument: the minus
// word check fans out across goroutines, and the plus words are sorted and
// deduplicated explicitly before matching.
func (s *Server) MatchDocumentConcurrent(rawQuery string, id int) ([]string, DocumentStatus, error) {
	data, ok := s.documents[id]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownDocument, id)
	}
	plus, minus, err := s.parseQueryTokens(rawQuery)
	if err != nil {
		return nil, 0, err
	}

	var excluded atomic.Bool
	var wg sync.WaitGroup
	for _, word := range minus {
		wg.Add(1)
		go func(word string) {
			defer wg.Done()
			if _, ok := s.wordDocFreqs[word][id]; ok {
				excluded.Store(true)
			}
		}(word)
	}
	wg.Wait()
	if excluded.Load() {
		return []string{}, data.status, nil
	}

	plus = sortUnique(plus)
	matched := make([]string, 0, len(plus))
	for _, word := range plus {
		if _, ok := s.wordDocFreqs[word][id]; ok {
			matched = append(matched, word)
		}
	}
	return matched, data.status, nil
}

// RemoveDocumentConcurrent removes a document like RemoveDocument,
// erasing the postings of its words in parallel. Each goroutine touches
// only the posting map of its own word; the outer index is pruned after
// the join.
func (s *Server) RemoveDocumentConcurrent(id int) {
	words, ok := s.docWordFreqs[id]
	if !ok {
		return
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	emptied := make([]string, 0, len(words))
	for word := range words {
		wg.Add(1)
		go func(word string) {
			defer wg.Done()
			postings := s.wordDocFreqs[word]
			delete(postings, id)
			if len(postings) == 0 {
				mu.Lock()
				emptied = append(emptied, word)
				mu.Unlock()
			}
		}(word)
	}
	wg.Wait()

	for _, word := range emptied {
		delete(s.wordDocFreqs, word)
	}
	s.forgetDocument(id)
}
