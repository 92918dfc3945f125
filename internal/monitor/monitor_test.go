package monitor

import "testing"

func TestUrgency(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		priority int
		want     string
	}{
		{"priority one account", 0.75, 1, "high"},
		{"very high score", 0.95, 2, "high"},
		{"threshold score", 0.9, 3, "high"},
		{"ordinary", 0.78, 2, "normal"},
		{"low priority low score", 0.7, 3, "normal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := urgency(tt.score, tt.priority); got != tt.want {
				t.Errorf("urgency(%v, %d) = %q, want %q", tt.score, tt.priority, got, tt.want)
			}
		})
	}
}
