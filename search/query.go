package search

import (
	"fmt"
	"slices"
	"sort"
)

// queryWord is one classified token of a raw query.
type queryWord struct {
	word    string
	isMinus bool
	isStop  bool
}

// query holds the parsed plus and minus word sets, each sorted ascending
// and deduplicated.
type query struct {
	plusWords  []string
	minusWords []string
}

func (s *Server) parseQueryWord(text string) (queryWord, error) {
	if text == "" {
		return queryWord{}, fmt.Errorf("%w: query word is empty", ErrInvalidArgument)
	}
	word := text
	isMinus := false
	if word[0] == '-' {
		isMinus = true
		word = word[1:]
	}
	if word == "" || word[0] == '-' || !IsValidWord(word) {
		return queryWord{}, fmt.Errorf("%w: query word %q is invalid", ErrInvalidArgument, text)
	}
	return queryWord{word: word, isMinus: isMinus, isStop: s.isStopWord(word)}, nil
}

// parseQueryTokens classifies every token of the raw query, dropping stop
// words. The returned slices are in query order, not deduplicated.
func (s *Server) parseQueryTokens(text string) (plus, minus []string, err error) {
	for _, token := range SplitIntoWords(text) {
		qw, err := s.parseQueryWord(token)
		if err != nil {
			return nil, nil, err
		}
		if qw.isStop {
			continue
		}
		if qw.isMinus {
			minus = append(minus, qw.word)
		} else {
			plus = append(plus, qw.word)
		}
	}
	return plus, minus, nil
}

func (s *Server) parseQuery(text string) (query, error) {
	plus, minus, err := s.parseQueryTokens(text)
	if err != nil {
		return query{}, err
	}
	return query{
		plusWords:  sortUnique(plus),
		minusWords: sortUnique(minus),
	}, nil
}

func sortUnique(words []string) []string {
	sort.Strings(words)
	return slices.Compact(words)
}
