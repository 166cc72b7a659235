package budget

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Encoding is the tokenizer used for token-accurate budgets.
const Encoding = "cl100k_base"

// DecodeFailed is returned by SqueezeTokens in place of text that could not be
// encoded or decoded.
const DecodeFailed = "failed to decode tokens"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

// encoder loads the BPE ranks once from the embedded offline loader so no
// network access is needed at runtime.
func encoder() (*tiktoken.Tiktoken, error) {
	encOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
		enc, encErr = tiktoken.GetEncoding(Encoding)
		if encErr != nil {
			encErr = fmt.Errorf("failed to load %s encoding: %w", Encoding, encErr)
		}
	})
	return enc, encErr
}

// CountTokens returns the number of tokens in text, or an error if the
// tokenizer is unavailable.
func CountTokens(text string) (int, error) {
	e, err := encoder()
	if err != nil {
		return 0, err
	}
	return len(e.EncodeOrdinary(text)), nil
}

// SqueezeTokens is the tokenizer-unit variant of Squeeze. When text encodes to
// more than maxLen tokens, ceil(maxLen*split) tokens are kept from the front
// and the rest of the budget from the back. Tokenizer failures yield
// DecodeFailed.
func SqueezeTokens(text string, maxLen int, split float64) (out string) {
	if maxLen <= 0 {
		return ""
	}
	e, err := encoder()
	if err != nil {
		return DecodeFailed
	}

	tokens := e.EncodeOrdinary(text)
	if len(tokens) <= maxLen {
		return text
	}

	head, tail := headTail(maxLen, split)
	kept := make([]int, 0, maxLen)
	kept = append(kept, tokens[:head]...)
	kept = append(kept, tokens[len(tokens)-tail:]...)

	defer func() {
		if r := recover(); r != nil {
			out = DecodeFailed
		}
	}()
	return e.Decode(kept)
}
