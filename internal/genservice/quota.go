package genservice

import "unicode/utf8"

const (
	// CharactersPerToken is the number of source characters one token pays for.
	CharactersPerToken = 15000
	// MinSourceCharacters is the shortest source text accepted for generation.
	MinSourceCharacters = 100
)

// CharacterCount measures text in Unicode code points.
func CharacterCount(text string) int {
	return utf8.RuneCountInString(text)
}

// TokenCost returns ceil(CharacterCount(text) / CharactersPerToken).
func TokenCost(text string) int {
	n := CharacterCount(text)
	return (n + CharactersPerToken - 1) / CharactersPerToken
}
