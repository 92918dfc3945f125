package voice

import (
	"strings"
	"testing"

	"marks-content-agent/internal/llm"
)

func TestSampleable(t *testing.T) {
	long := strings.Repeat("funding rates stay elevated ", 4)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "substantial post passes",
			text: long,
			want: true,
		},
		{
			name: "short fragment rejected",
			text: "gm",
			want: false,
		},
		{
			name: "just under the length floor",
			text: strings.Repeat("a", 49),
			want: false,
		},
		{
			name: "link dump rejected",
			text: long + " http://a http://b http://c http://d",
			want: false,
		},
		{
			name: "three links still pass",
			text: long + " http://a http://b http://c",
			want: true,
		},
		{
			name: "mention chain rejected",
			text: long + " @a @b @c @d @e @f",
			want: false,
		},
		{
			name: "five mentions still pass",
			text: long + " @a @b @c @d @e",
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sampleable(tt.text); got != tt.want {
				t.Errorf("Sampleable(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

var _ llm.SampleSource = (*Directory)(nil)
