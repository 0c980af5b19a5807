package postprocess

import "testing"

func TestRemoveThinkingBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no thinking blocks",
			input:    "## Storage\nThe storage module owns the write path.",
			expected: "## Storage\nThe storage module owns the write path.",
		},
		{
			name:     "simple thinking block",
			input:    "Some text<thinking>Let me draft this</thinking>More text",
			expected: "Some textMore text",
		},
		{
			name:     "reasoning block",
			input:    "Start<reasoning>Weighing the options</reasoning>End",
			expected: "StartEnd",
		},
		{
			name:     "reflection block",
			input:    "Begin<reflection>Checking context</reflection>Finish",
			expected: "BeginFinish",
		},
		{
			name:     "multiple thinking blocks",
			input:    "<thinking>First</thinking>middle<thinking>Second</thinking>",
			expected: "middle",
		},
		{
			name:     "truncated thinking block (no closing)",
			input:    "<thinking>Draft in progress",
			expected: "",
		},
		{
			name:     "truncated reasoning block",
			input:    "<reasoning>This model was cut off",
			expected: "",
		},
		{
			name:     "truncated thinking in middle",
			input:    "Before<thinking>Incomplete",
			expected: "Before",
		},
		{
			name:     "nested thinking inside content",
			input:    "Text<thinking>Ignored</thinking> after",
			expected: "Text after",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := removeThinkingBlocks(tt.input)
			if result != tt.expected {
				t.Errorf("removeThinkingBlocks(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRemoveInstructionEchoes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no echo",
			input:    "Module boundaries follow the data flow.",
			expected: "Module boundaries follow the data flow.",
		},
		{
			name:     "here's document echo",
			input:    "Here's the document: Actual document text",
			expected: "Actual document text",
		},
		{
			name:     "here is revised design echo",
			input:    "Here is the revised design: Done",
			expected: "Done",
		},
		{
			name:     "here is design no the",
			input:    "Here's design: Text",
			expected: "Text",
		},
		{
			name:     "the design echo",
			input:    "The design: Hello world",
			expected: "Hello world",
		},
		{
			name:     "the revised document echo",
			input:    "The revised document: Done",
			expected: "Done",
		},
		{
			name:     "certainly echo",
			input:    "Certainly, here's the design: Text",
			expected: "Text",
		},
		{
			name:     "sure echo",
			input:    "Sure, here's the updated design: Done",
			expected: "Done",
		},
		{
			name:     "of course echo",
			input:    "Of course here's the final review: Text",
			expected: "Text",
		},
		{
			name:     "echo not at start (should not match)",
			input:    "Before Here's the document: After",
			expected: "Before Here's the document: After",
		},
		{
			name:     "echo without colon (should not match)",
			input:    "Here's the document text",
			expected: "Here's the document text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := removeInstructionEchoes(tt.input)
			if result != tt.expected {
				t.Errorf("removeInstructionEchoes(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRemoveWrapping(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "single char",
			input:    "a",
			expected: "a",
		},
		{
			name:     "no wrapping",
			input:    "Hello world",
			expected: "Hello world",
		},
		{
			name:     "double quotes",
			input:    "\"Hello world\"",
			expected: "Hello world",
		},
		{
			name:     "single quotes",
			input:    "'Hello world'",
			expected: "Hello world",
		},
		{
			name:     "guillemets",
			input:    "«Hello world»",
			expected: "Hello world",
		},
		{
			name:     "curly double quotes",
			input:    "“Hello world”",
			expected: "Hello world",
		},
		{
			name:     "curly single quotes",
			input:    "‘Hello world’",
			expected: "Hello world",
		},
		{
			name:     "unmatched quotes",
			input:    "\"Hello world'",
			expected: "\"Hello world'",
		},
		{
			name:     "only opening quote",
			input:    "\"Hello world",
			expected: "\"Hello world",
		},
		{
			name:     "bare fence",
			input:    "```\n# Design\nBody\n```",
			expected: "# Design\nBody",
		},
		{
			name:     "markdown fence",
			input:    "```markdown\n# Design\n```",
			expected: "# Design",
		},
		{
			name:     "json fence",
			input:    "```json\n{\"score\": 80}\n```",
			expected: "{\"score\": 80}",
		},
		{
			name:     "fence not wrapping whole reply",
			input:    "Intro\n```\ncode\n```",
			expected: "Intro\n```\ncode\n```",
		},
		{
			name:     "content with quotes inside",
			input:    "\"He said \"hello\"\"",
			expected: "He said \"hello\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := removeWrapping(tt.input)
			if result != tt.expected {
				t.Errorf("removeWrapping(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "clean text",
			input:    "Module boundaries follow the data flow.",
			expected: "Module boundaries follow the data flow.",
		},
		{
			name:     "full cleanup pipeline",
			input:    "<thinking>Thinking</thinking>Here's the document:\n\"Document text\"",
			expected: "Document text",
		},
		{
			name:     "thinking + echo + quotes",
			input:    "<reasoning>Reasoning</reasoning>Here's the updated design:\n\"Result\"",
			expected: "Result",
		},
		{
			name:     "fenced reply",
			input:    "```markdown\n# Overall Design\n## Modules\n```",
			expected: "# Overall Design\n## Modules",
		},
		{
			name:     "truncated thinking at end",
			input:    "Text<thinking>Incomplete",
			expected: "Text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clean(tt.input)
			if result != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
