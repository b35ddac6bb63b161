package consolidate

import "testing"

func TestVote(t *testing.T) {
	tests := []struct {
		name     string
		variants []string
		want     string
	}{
		{"majority", []string{"dna", "DNA", "dna", "DNA", "DNA"}, "DNA"},
		{"majority lower", []string{"cell", "Cell", "cell"}, "cell"},
		{"tie prefers upper", []string{"mitosis", "Mitosis"}, "Mitosis"},
		{"tie first seen", []string{"iPhone", "iphone"}, "iPhone"},
		{"single", []string{"Golgi"}, "Golgi"},
		{"empty", nil, ""},
		{"non letter first", []string{"3d", "3D"}, "3d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Vote(tt.variants); got != tt.want {
				t.Errorf("Vote(%v) = %q, want %q", tt.variants, got, tt.want)
			}
		})
	}
}
