package llm

import "testing"

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON unchanged",
			input: `{"score": 0.8}`,
			want:  `{"score": 0.8}`,
		},
		{
			name:  "strips json fenced block",
			input: "```json\n{\"score\": 0.8}\n```",
			want:  `{"score": 0.8}`,
		},
		{
			name:  "strips plain fenced block",
			input: "```\n{\"score\": 0.8}\n```",
			want:  `{"score": 0.8}`,
		},
		{
			name:  "slices object out of prose",
			input: "Here is my assessment:\n{\"score\": 0.8}\nHope that helps!",
			want:  `{"score": 0.8}`,
		},
		{
			name:  "slices array out of prose",
			input: "The learnings are:\n[\"a\", \"b\"]\nDone.",
			want:  `["a", "b"]`,
		},
		{
			name:  "no json at all",
			input: "I cannot answer that.",
			want:  "I cannot answer that.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSON(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Score float64 `json:"score"`
	}
	if err := DecodeJSON("```json\n{\"score\": 0.42}\n```", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Score != 0.42 {
		t.Errorf("got %v, want 0.42", out.Score)
	}

	if err := DecodeJSON("not json", &out); err == nil {
		t.Error("expected error for non-JSON input")
	}
}
