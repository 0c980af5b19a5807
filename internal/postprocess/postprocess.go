// Package postprocess removes common LLM artifacts from generated replies.
//
// It is applied to the raw text returned by any model call (drafting,
// review, optimization, alignment) before the reply is summarized, parsed,
// or written to the run journal.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text in three phases and returns the
// trimmed result:
//  1. Thinking / reasoning block removal
//  2. Instruction echo removal (prompt leakage)
//  3. Whole-reply code fence and quote unwrapping
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = removeWrapping(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: thinking blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
// Flags: i = case-insensitive, s = dot matches newline.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: instruction echoes ---

// echoPatterns match introductory phrases that LLMs sometimes prepend even
// when instructed not to.  Each pattern is anchored to the start of the string
// and requires a colon to reduce false positives on legitimate content.
var echoPatterns = []*regexp.Regexp{
	// "Here is / Here's [the] [revised|updated|complete] document|design|review:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:revised |updated |complete |final )?(?:document|design|review|summary)\s*:`),
	// "[The] [revised|updated] [document|design document]:"
	regexp.MustCompile(`(?i)^(?:the )?(?:revised |updated |final )?(?:document|design document|design)\s*:`),
	// "Certainly / Sure / Of course[,] here is [the] document:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the)? (?:revised |updated |complete |final )?(?:document|design|review|summary)\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 3: wrapping ---

// fenceRe matches a reply that is one whole fenced code block, optionally
// tagged markdown/md/json.
var fenceRe = regexp.MustCompile("(?s)^```(?:markdown|md|json)?\\s*\n(.*?)\n?```$")

// removeWrapping strips a whole-reply markdown fence, then a matching pair of
// outer quotes when the entire text is wrapped in them.  Supported pairs:
//
//	"…"  '…'  «…»  “…”  ‘…’
func removeWrapping(text string) string {
	text = strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
