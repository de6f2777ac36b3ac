package normalize

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
	encoderErr  error
)

// getEncoder returns the shared cl100k_base encoder. All budget math uses
// the same encoding so counts stay comparable across model tiers.
func getEncoder() (*tiktoken.Tiktoken, error) {
	encoderOnce.Do(func() {
		encoder, encoderErr = tiktoken.GetEncoding("cl100k_base")
	})
	return encoder, encoderErr
}

// CountTokens estimates the token count of a text.
func CountTokens(text string) (int, error) {
	tkm, err := getEncoder()
	if err != nil {
		return 0, err
	}
	return len(tkm.Encode(text, nil, nil)), nil
}

// truncateTokens cuts text to at most budget tokens, keeping the earliest
// content. Returns the text unchanged when it already fits.
func truncateTokens(text string, budget int) (string, int, error) {
	tkm, err := getEncoder()
	if err != nil {
		return "", 0, err
	}
	tokens := tkm.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text, len(tokens), nil
	}
	return tkm.Decode(tokens[:budget]), budget, nil
}
