package model

import "testing"

func TestParsePillar(t *testing.T) {
	tests := []struct {
		input  string
		want   Pillar
		wantOK bool
	}{
		{"market_commentary", PillarMarketCommentary, true},
		{"Market Commentary", PillarMarketCommentary, true},
		{"  EDUCATION  ", PillarEducation, true},
		{"social proof", PillarSocialProof, true},
		{"memes", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParsePillar(tt.input)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ParsePillar(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input  string
		want   Category
		wantOK bool
	}{
		{"nigeria", CategoryNigeria, true},
		{"Global Macro", CategoryGlobalMacro, true},
		{"crypto_defi", CategoryCryptoDefi, true},
		{"antarctica", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCategory(tt.input)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ParseCategory(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}
