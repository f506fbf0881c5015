package session

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
	encoderErr  error
)

// getEncoder lazily initializes the shared token encoder. The cl100k_base
// vocabulary is close enough for budget estimation across models.
func getEncoder() (*tiktoken.Tiktoken, error) {
	encoderOnce.Do(func() {
		encoder, encoderErr = tiktoken.GetEncoding("cl100k_base")
		if encoderErr != nil {
			encoderErr = fmt.Errorf("failed to load token encoder: %w", encoderErr)
		}
	})
	return encoder, encoderErr
}

// countTokens estimates the token weight of a string. Falls back to a
// bytes/4 heuristic if the encoder is unavailable, so appends never fail
// on weighing.
func countTokens(text string) int {
	enc, err := getEncoder()
	if err != nil {
		return len(text)/4 + 1
	}
	return len(enc.Encode(text, nil, nil))
}
