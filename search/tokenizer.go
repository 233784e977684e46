package search

import "strings"

// SplitIntoWords splits text on ASCII space characters. Consecutive,
// leading, and trailing spaces produce no empty tokens.
func SplitIntoWords(text string) []string {
	parts := strings.Split(text, " ")
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			words = append(words, part)
		}
	}
	return words
}

// IsValidWord reports whether the word is free of control characters.
// The check is on raw bytes, so multi-byte encodings pass untouched.
func IsValidWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < 0x20 {
			return false
		}
	}
	return true
}
