// Package tokens estimates prompt sizes for budget warnings and call logging.
// Counting uses the cl100k_base encoding when it can be initialized and a
// cheap heuristic otherwise.
package tokens

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	once sync.Once
	enc  *tiktoken.Tiktoken
)

func encoding() *tiktoken.Tiktoken {
	once.Do(func() {
		e, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			enc = e
		}
	})
	return enc
}

// Count returns the token count of text under cl100k_base, or Estimate when
// the encoding is unavailable.
func Count(text string) int {
	if e := encoding(); e != nil {
		return len(e.Encode(text, nil, nil))
	}
	return Estimate(text)
}

// Estimate returns max(runes/4, words), minimum 1 for non-blank text. It never
// touches the tokenizer.
func Estimate(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	n := len([]rune(trimmed)) / 4
	if w := len(strings.Fields(trimmed)); n < w {
		n = w
	}
	if n == 0 {
		n = 1
	}
	return n
}

// Truncate cuts text down to roughly max tokens, appending an ellipsis when
// anything was dropped. max <= 0 leaves text untouched.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	if e := encoding(); e != nil {
		ts := e.Encode(text, nil, nil)
		if len(ts) <= max {
			return text
		}
		return e.Decode(ts[:max]) + "..."
	}
	runes := []rune(text)
	if len(runes) <= max*4 {
		return text
	}
	return string(runes[:max*4]) + "..."
}
