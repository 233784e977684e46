package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	server, err := NewServerFromText("in the")
	require.NoError(t, err)
	assert.Equal(t, 0, server.DocumentCount())

	// empty strings in the iterable are discarded
	server, err = NewServer("in", "", "the")
	require.NoError(t, err)
	assert.True(t, server.isStopWord("in"))
	assert.True(t, server.isStopWord("the"))

	// invalid stop words fail construction
	_, err = NewServer("in", "th\x02e")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddDocument(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)

	require.NoError(t, server.AddDocument(1, "cat in the city", StatusActual, []int{1, 2, 3}))
	assert.Equal(t, 1, server.DocumentCount())
	require.NoError(t, server.AddDocument(2, "cat in the city", StatusActual, []int{1, 2, 3}))
	assert.Equal(t, 2, server.DocumentCount())

	// id 0 is accepted, negative ids are not
	assert.NoError(t, server.AddDocument(0, "dog", StatusActual, nil))
	assert.ErrorIs(t, server.AddDocument(-1, "dog", StatusActual, nil), ErrInvalidArgument)

	// duplicate ids are rejected
	assert.ErrorIs(t, server.AddDocument(1, "dog", StatusActual, nil), ErrInvalidArgument)

	// documents with control characters are rejected without partial updates
	wordsBefore := server.WordCount()
	assert.ErrorIs(t, server.AddDocument(10, "dog ca\x01t", StatusActual, nil), ErrInvalidArgument)
	assert.Equal(t, wordsBefore, server.WordCount())
	assert.Equal(t, 3, server.DocumentCount())
}

func TestExcludeStopWords(t *testing.T) {
	server, err := NewServerFromText("in the")
	require.NoError(t, err)
	require.NoError(t, server.AddDocument(42, "cat in the city", StatusActual, []int{1, 2, 3}))

	found, err := server.FindTopDocuments("in")
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = server.FindTopDocuments("cat")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 42, found[0].ID)
	assert.Equal(t, 2, found[0].Rating)
	// the only document in the index has IDF ln(1/1) = 0
	assert.InDelta(t, 0.0, found[0].Relevance, relevanceEpsilon)
}

func TestMinusWords(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)
	require.NoError(t, server.AddDocument(1, "cat in the city", StatusActual, []int{1, 2, 3}))
	require.NoError(t, server.AddDocument(2, "cat food is delicious", StatusActual, []int{1, 2, 3}))

	found, err := server.FindTopDocuments("cat -city")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].ID)

	// both documents match without the minus word
	found, err = server.FindTopDocuments("cat")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestMatchDocument(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)
	require.NoError(t, server.AddDocument(1, "cat in the city eats cat food and does other stuff cat do", StatusBanned, []int{1, 2, 3}))

	words, status, err := server.MatchDocument("cat food", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "food"}, words)
	assert.Equal(t, StatusBanned, status)

	// a minus word present in the document empties the match
	words, status, err = server.MatchDocument("cat food -city", 1)
	require.NoError(t, err)
	assert.Empty(t, words)
	assert.Equal(t, StatusBanned, status)

	// a minus word absent from the document changes nothing
	words, _, err = server.MatchDocument("cat food -sparrow", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "food"}, words)

	// matched words come back in ascending lexical order
	words, _, err = server.MatchDocument("food eats city cat", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "city", "eats", "food"}, words)

	_, _, err = server.MatchDocument("cat", 99)
	assert.ErrorIs(t, err, ErrUnknownDocument)

	_, _, err = server.MatchDocument("--cat", 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name     string
		ratings  []int
		expected int
	}{
		{name: "Positive", ratings: []int{1, 2, 3}, expected: 2},
		{name: "Negative", ratings: []int{-1, -3, -3}, expected: -2},
		{name: "Around zero truncates", ratings: []int{1, 3, -3}, expected: 0},
		{name: "Empty", ratings: nil, expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer()
			require.NoError(t, err)
			require.NoError(t, server.AddDocument(1, "cat", StatusActual, tt.ratings))
			found, err := server.FindTopDocuments("cat")
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, tt.expected, found[0].Rating)
		})
	}
}

// newRankedServer builds the three-document corpus used by the relevance
// and ordering tests.
func newRankedServer(t *testing.T) *Server {
	t.Helper()
	server, err := NewServerFromText("и в на")
	require.NoError(t, err)
	require.NoError(t, server.AddDocument(0, "белый кот модный ошейник", StatusActual, []int{8, -3}))
	require.NoError(t, server.AddDocument(1, "пушистый кот пушистый хвост", StatusActual, []int{7, 2, 7}))
	require.NoError(t, server.AddDocument(2, "ухоженный пёс выразительные глаза", StatusActual, []int{5, -12, 2, 1}))
	return server
}

func TestRelevanceOrdering(t *testing.T) {
	server := newRankedServer(t)

	found, err := server.FindTopDocuments("пушистый ухоженный кот")
	require.NoError(t, err)
	require.Len(t, found, 3)

	assert.Equal(t, []int{1, 2, 0}, resultIDs(found))
	for i := 1; i < len(found); i++ {
		assert.GreaterOrEqual(t, found[i-1].Relevance, found[i].Relevance-relevanceEpsilon)
	}

	// TF-IDF reference values: tf(word, doc) * ln(N / df(word)), summed
	// over the plus words present in each document.
	expected := map[int]float64{
		1: 0.5*math.Log(3.0/1.0) + 0.25*math.Log(3.0/2.0),
		2: 0.25 * math.Log(3.0 / 1.0),
		0: 0.25 * math.Log(3.0 / 2.0),
	}
	for _, doc := range found {
		assert.InDelta(t, expected[doc.ID], doc.Relevance, relevanceEpsilon)
	}
}

func TestRelevanceTieBreaksByRating(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)
	// identical texts give identical relevance; ordering falls to rating
	require.NoError(t, server.AddDocument(1, "cat city", StatusActual, []int{1}))
	require.NoError(t, server.AddDocument(2, "cat city", StatusActual, []int{9}))
	require.NoError(t, server.AddDocument(3, "cat city", StatusActual, []int{5}))

	found, err := server.FindTopDocuments("cat")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, resultIDs(found))
}

func TestPredicateAndStatusFilters(t *testing.T) {
	server, err := NewServerFromText("in the")
	require.NoError(t, err)
	require.NoError(t, server.AddDocument(0, "cat in the city", StatusActual, []int{1, 2, 3}))
	require.NoError(t, server.AddDocument(1, "cat food cat delicious", StatusBanned, []int{1, 2, 3}))
	require.NoError(t, server.AddDocument(2, "dog food", StatusIrrelevant, []int{1}))

	found, err := server.FindTopDocumentsFiltered("cat food", func(id int, _ DocumentStatus, _ int) bool {
		return id < 2
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, resultIDs(found))

	found, err = server.FindTopDocumentsWithStatus("cat food", StatusBanned)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, resultIDs(found))

	// the default filter keeps only ACTUAL documents; the single ACTUAL
	// document holds the minus word and none of the plus words
	found, err = server.FindTopDocuments("-city food")
	require.NoError(t, err)
	assert.Empty(t, found)

	// a status with no documents matches nothing
	found, err = server.FindTopDocumentsWithStatus("cat food", StatusRemoved)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTopDocumentsTruncation(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)
	for id := 0; id < 9; id++ {
		require.NoError(t, server.AddDocument(id, "cat", StatusActual, []int{id}))
	}
	found, err := server.FindTopDocuments("cat")
	require.NoError(t, err)
	require.Len(t, found, MaxResultDocumentCount)
	// all relevances tie at 0, so the top ratings win
	assert.Equal(t, []int{8, 7, 6, 5, 4}, resultIDs(found))
}

func TestOnlyStopWordsQuery(t *testing.T) {
	server, err := NewServerFromText("in the")
	require.NoError(t, err)
	require.NoError(t, server.AddDocument(1, "cat in the city", StatusActual, nil))

	found, err := server.FindTopDocuments("in the")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestEmptyBodyDocument(t *testing.T) {
	server, err := NewServerFromText("in the")
	require.NoError(t, err)

	// a text of only stop words indexes no postings but keeps metadata
	require.NoError(t, server.AddDocument(7, "in the", StatusActual, []int{4}))
	assert.Equal(t, 1, server.DocumentCount())
	assert.Equal(t, 0, server.WordCount())
	assert.Empty(t, server.GetWordFrequencies(7))
	assert.Equal(t, []int{7}, server.DocumentIDs())

	words, status, err := server.MatchDocument("cat", 7)
	require.NoError(t, err)
	assert.Empty(t, words)
	assert.Equal(t, StatusActual, status)

	server.RemoveDocument(7)
	assert.Equal(t, 0, server.DocumentCount())
}

func TestGetWordFrequencies(t *testing.T) {
	server, err := NewServerFromText("in the")
	require.NoError(t, err)
	require.NoError(t, server.AddDocument(1, "cat in the city cat", StatusActual, nil))

	freqs := server.GetWordFrequencies(1)
	require.Len(t, freqs, 2)
	assert.InDelta(t, 2.0/3.0, freqs["cat"], relevanceEpsilon)
	assert.InDelta(t, 1.0/3.0, freqs["city"], relevanceEpsilon)

	assert.Empty(t, server.GetWordFrequencies(2))
}

func TestDocumentIDsAscending(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)
	for _, id := range []int{5, 1, 9, 0, 3} {
		require.NoError(t, server.AddDocument(id, "cat", StatusActual, nil))
	}
	assert.Equal(t, []int{0, 1, 3, 5, 9}, server.DocumentIDs())

	server.RemoveDocument(3)
	assert.Equal(t, []int{0, 1, 5, 9}, server.DocumentIDs())
}

func TestRemoveDocument(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)
	require.NoError(t, server.AddDocument(1, "cat city", StatusActual, []int{1}))
	require.NoError(t, server.AddDocument(2, "cat food", StatusActual, []int{1}))

	server.RemoveDocument(1)
	assert.Equal(t, 1, server.DocumentCount())
	assert.Empty(t, server.GetWordFrequencies(1))
	assert.Equal(t, []int{2}, server.DocumentIDs())

	// the shared posting list survives, the exclusive one is purged
	found, err := server.FindTopDocuments("cat")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, resultIDs(found))
	found, err = server.FindTopDocuments("city")
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, 2, server.WordCount())

	// removing twice is the same as removing once
	server.RemoveDocument(1)
	assert.Equal(t, 1, server.DocumentCount())

	// absent ids are a no-op
	server.RemoveDocument(42)
	assert.Equal(t, 1, server.DocumentCount())
}

func TestAddRemoveRoundTrip(t *testing.T) {
	server, err := NewServerFromText("in the")
	require.NoError(t, err)
	require.NoError(t, server.AddDocument(1, "cat in the city", StatusActual, []int{1, 2, 3}))

	before, err := server.FindTopDocuments("cat city dog")
	require.NoError(t, err)

	require.NoError(t, server.AddDocument(2, "dog in the city", StatusActual, []int{5}))
	server.RemoveDocument(2)

	after, err := server.FindTopDocuments("cat city dog")
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range after {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.InDelta(t, before[i].Relevance, after[i].Relevance, relevanceEpsilon)
	}
	assert.Equal(t, 2, server.WordCount())
}

func TestDocumentString(t *testing.T) {
	doc := Document{ID: 42, Relevance: 0.5, Rating: 2}
	assert.Equal(t, "{ document_id = 42, relevance = 0.5, rating = 2 }", doc.String())
}

func resultIDs(docs []Document) []int {
	ids := make([]int, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids
}

func generateCorpus(t testing.TB, server *Server, n int) {
	texts := []string{
		"quick brown fox jumps over lazy dog",
		"pack my box with five dozen liquor jugs",
		"how vexingly quick daft zebras jump",
		"five boxing wizards jump quickly",
		"sphinx of black quartz judge my vow",
	}
	for id := 0; id < n; id++ {
		err := server.AddDocument(id, texts[id%len(texts)], DocumentStatus(id%4), []int{id % 10, -(id % 3)})
		if err != nil {
			t.Fatalf("add document %d: %v", id, err)
		}
	}
}

func BenchmarkFindTopDocuments(b *testing.B) {
	server, err := NewServerFromText("of my with")
	if err != nil {
		b.Fatal(err)
	}
	generateCorpus(b, server, 1000)

	b.Run("Sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := server.FindTopDocuments("quick jump -sphinx"); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Concurrent", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := server.FindTopDocumentsConcurrent("quick jump -sphinx"); err != nil {
				b.Fatal(err)
			}
		}
	})
}
