package search

import (
	"fmt"
	"math"
	"sort"
)

// MaxResultDocumentCount caps the number of documents a find returns.
const MaxResultDocumentCount = 5

// relevanceEpsilon is the tolerance below which two relevance values are
// considered equal and ranking falls back to the rating.
const relevanceEpsilon = 1e-6

// DocumentPredicate filters candidate documents during a find. It receives
// the document id, its status, and its average rating.
type DocumentPredicate func(id int, status DocumentStatus, rating int) bool

type documentData struct {
	rating int
	status DocumentStatus
}

// Server is an in-memory TF-IDF search engine over short text documents.
//
// AddDocument and RemoveDocument require external write serialization; the
// read operations (finds, matching, word frequencies) are safe to call from
// multiple goroutines as long as no writer runs concurrently.
type Server struct {
	stopWords    map[string]struct{}
	wordDocFreqs map[string]map[int]float64 // word -> document id -> TF
	docWordFreqs map[int]map[string]float64 // document id -> word -> TF
	documents    map[int]documentData
	documentIDs  []int // ascending
}

// NewServer builds a server with the given stop words. Empty strings are
// discarded; a stop word containing a control character fails construction.
func NewServer(stopWords ...string) (*Server, error) {
	s := &Server{
		stopWords:    make(map[string]struct{}, len(stopWords)),
		wordDocFreqs: make(map[string]map[int]float64),
		docWordFreqs: make(map[int]map[string]float64),
		documents:    make(map[int]documentData),
	}
	for _, word := range stopWords {
		if word == "" {
			continue
		}
		if !IsValidWord(word) {
			return nil, fmt.Errorf("%w: stop word %q is invalid", ErrInvalidArgument, word)
		}
		s.stopWords[word] = struct{}{}
	}
	return s, nil
}

// NewServerFromText builds a server from a space-separated stop word string.
func NewServerFromText(stopWordsText string) (*Server, error) {
	return NewServer(SplitIntoWords(stopWordsText)...)
}

func (s *Server) isStopWord(word string) bool {
	_, ok := s.stopWords[word]
	return ok
}

// splitIntoWordsNoStop validates every token before returning, so a failing
// AddDocument never leaves the index partially updated.
func (s *Server) splitIntoWordsNoStop(text string) ([]string, error) {
	tokens := SplitIntoWords(text)
	words := make([]string, 0, len(tokens))
	for _, word := range tokens {
		if !IsValidWord(word) {
			return nil, fmt.Errorf("%w: word %q contains a control character", ErrInvalidArgument, word)
		}
		if !s.isStopWord(word) {
			words = append(words, word)
		}
	}
	return words, nil
}

// AddDocument indexes a document under the given id. The id must be
// non-negative and not already present. A document whose text reduces to
// zero non-stop words is accepted: it contributes no postings but its
// metadata and id are recorded.
func (s *Server) AddDocument(id int, text string, status DocumentStatus, ratings []int) error {
	if id < 0 {
		return fmt.Errorf("%w: document id %d is negative", ErrInvalidArgument, id)
	}
	if _, ok := s.documents[id]; ok {
		return fmt.Errorf("%w: document id %d already exists", ErrInvalidArgument, id)
	}
	words, err := s.splitIntoWordsNoStop(text)
	if err != nil {
		return err
	}

	docFreqs := make(map[string]float64, len(words))
	if len(words) > 0 {
		inv := 1.0 / float64(len(words))
		for _, word := range words {
			postings := s.wordDocFreqs[word]
			if postings == nil {
				postings = make(map[int]float64)
				s.wordDocFreqs[word] = postings
			}
			postings[id] += inv
			docFreqs[word] += inv
		}
	}
	s.docWordFreqs[id] = docFreqs
	s.documents[id] = documentData{rating: computeAverageRating(ratings), status: status}
	s.insertDocumentID(id)
	return nil
}

// FindTopDocuments ranks documents with StatusActual against the query.
func (s *Server) FindTopDocuments(rawQuery string) ([]Document, error) {
	return s.FindTopDocumentsWithStatus(rawQuery, StatusActual)
}

// FindTopDocumentsWithStatus ranks documents whose status equals status.
func (s *Server) FindTopDocumentsWithStatus(rawQuery string, status DocumentStatus) ([]Document, error) {
	return s.FindTopDocumentsFiltered(rawQuery, statusPredicate(status))
}

// FindTopDocumentsFiltered ranks the documents accepted by pred, sorted by
// relevance then rating, truncated to MaxResultDocumentCount.
func (s *Server) FindTopDocumentsFiltered(rawQuery string, pred DocumentPredicate) ([]Document, error) {
	q, err := s.parseQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	matched := s.findAllDocuments(q, pred)
	return topDocuments(matched), nil
}

func statusPredicate(status DocumentStatus) DocumentPredicate {
	return func(_ int, documentStatus DocumentStatus, _ int) bool {
		return documentStatus == status
	}
}

func (s *Server) findAllDocuments(q query, pred DocumentPredicate) []Document {
	relevance := make(map[int]float64)
	for _, word := range q.plusWords {
		postings, ok := s.wordDocFreqs[word]
		if !ok {
			continue
		}
		idf := s.wordInverseDocumentFreq(word)
		for id, tf := range postings {
			data := s.documents[id]
			if pred(id, data.status, data.rating) {
				relevance[id] += tf * idf
			}
		}
	}
	for _, word := range q.minusWords {
		for id := range s.wordDocFreqs[word] {
			delete(relevance, id)
		}
	}
	return s.collectDocuments(relevance)
}

// collectDocuments builds the result list in ascending id order so that
// full ties keep a deterministic order after the stable relevance sort.
func (s *Server) collectDocuments(relevance map[int]float64) []Document {
	ids := make([]int, 0, len(relevance))
	for id := range relevance {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	matched := make([]Document, 0, len(ids))
	for _, id := range ids {
		matched = append(matched, Document{ID: id, Relevance: relevance[id], Rating: s.documents[id].rating})
	}
	return matched
}

func topDocuments(matched []Document) []Document {
	sort.SliceStable(matched, func(i, j int) bool {
		if math.Abs(matched[i].Relevance-matched[j].Relevance) < relevanceEpsilon {
			return matched[i].Rating > matched[j].Rating
		}
		return matched[i].Relevance > matched[j].Relevance
	})
	if len(matched) > MaxResultDocumentCount {
		matched = matched[:MaxResultDocumentCount]
	}
	return matched
}

func (s *Server) wordInverseDocumentFreq(word string) float64 {
	return math.Log(float64(len(s.documents)) / float64(len(s.wordDocFreqs[word])))
}

// MatchDocument reports which query words occur in the document. If any
// minus word occurs in it, the word list is empty. The words are returned
// in ascending lexical order.
func (s *Server) MatchDocument(rawQuery string, id int) ([]string, DocumentStatus, error) {
	data, ok := s.documents[id]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownDocument, id)
	}
	q, err := s.parseQuery(rawQuery)
	if err != nil {
		return nil, 0, err
	}
	for _, word := range q.minusWords {
		if _, ok := s.wordDocFreqs[word][id]; ok {
			return []string{}, data.status, nil
		}
	}
	matched := make([]string, 0, len(q.plusWords))
	for _, word := range q.plusWords {
		if _, ok := s.wordDocFreqs[word][id]; ok {
			matched = append(matched, word)
		}
	}
	return matched, data.status, nil
}

// RemoveDocument erases the document from every structure that indexes it.
// Posting lists that become empty are purged. Absent ids are a no-op.
func (s *Server) RemoveDocument(id int) {
	words, ok := s.docWordFreqs[id]
	if !ok {
		return
	}
	for word := range words {
		postings := s.wordDocFreqs[word]
		delete(postings, id)
		if len(postings) == 0 {
			delete(s.wordDocFreqs, word)
		}
	}
	s.forgetDocument(id)
}

func (s *Server) forgetDocument(id int) {
	delete(s.docWordFreqs, id)
	delete(s.documents, id)
	i := sort.SearchInts(s.documentIDs, id)
	if i < len(s.documentIDs) && s.documentIDs[i] == id {
		s.documentIDs = append(s.documentIDs[:i], s.documentIDs[i+1:]...)
	}
}

func (s *Server) insertDocumentID(id int) {
	i := sort.SearchInts(s.documentIDs, id)
	s.documentIDs = append(s.documentIDs, 0)
	copy(s.documentIDs[i+1:], s.documentIDs[i:])
	s.documentIDs[i] = id
}

// GetWordFrequencies returns the word-to-TF mapping of the document, or nil
// if the id is absent. The returned map is the server's own view and must
// not be mutated.
func (s *Server) GetWordFrequencies(id int) map[string]float64 {
	return s.docWordFreqs[id]
}

// DocumentIDs returns all present document ids in ascending order.
func (s *Server) DocumentIDs() []int {
	return append([]int(nil), s.documentIDs...)
}

// DocumentCount returns the number of documents currently indexed.
func (s *Server) DocumentCount() int {
	return len(s.documents)
}

// WordCount returns the number of distinct indexed words.
func (s *Server) WordCount() int {
	return len(s.wordDocFreqs)
}
