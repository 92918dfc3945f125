package review

import (
	"reflect"
	"testing"
)

func TestParseConfirmation(t *testing.T) {
	learnings := []string{
		"Prefer posts under 200 characters",
		"Avoid exclamation marks",
		"Lead with a concrete number",
	}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain yes keeps all",
			text: "yes",
			want: learnings,
		},
		{
			name: "emphatic yes keeps all",
			text: "Yes!",
			want: learnings,
		},
		{
			name: "plain no keeps none",
			text: "no",
			want: nil,
		},
		{
			name: "nope keeps none",
			text: "nope, skip those",
			want: nil,
		},
		{
			name: "yes except drops the named one",
			text: "yes, except the exclamation one",
			want: []string{"Prefer posts under 200 characters", "Lead with a concrete number"},
		},
		{
			name: "yes but not drops the named one",
			text: "yes but not the characters rule",
			want: []string{"Avoid exclamation marks", "Lead with a concrete number"},
		},
		{
			name: "free text reads as exception list",
			text: "the number thing was specific to that post",
			want: []string{"Prefer posts under 200 characters", "Avoid exclamation marks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseConfirmation(tt.text, learnings)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseConfirmation(%q)\n got: %v\nwant: %v", tt.text, got, tt.want)
			}
		})
	}
}
