package command

import (
	"reflect"
	"testing"

	"marks-content-agent/internal/model"
)

func TestParseBang(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Command
	}{
		{
			name:  "add monitor with priority",
			input: "!add @whale nigeria 1",
			want:  AddMonitorCommand{Handle: "whale", Category: model.CategoryNigeria, Priority: 1},
		},
		{
			name:  "add monitor default priority",
			input: "!add whale crypto_defi",
			want:  AddMonitorCommand{Handle: "whale", Category: model.CategoryCryptoDefi, Priority: 2},
		},
		{
			name:  "voice add with pillars",
			input: "!voice add @RaoulGMI market_commentary,education",
			want: AddVoiceCommand{Handle: "RaoulGMI", Pillars: []model.Pillar{
				model.PillarMarketCommentary, model.PillarEducation}},
		},
		{
			name:  "voice add bare",
			input: "!voice add @RaoulGMI",
			want:  AddVoiceCommand{Handle: "RaoulGMI"},
		},
		{
			name:  "voice tag",
			input: "!voice tag @RaoulGMI product",
			want:  TagVoiceCommand{Handle: "RaoulGMI", Pillars: []model.Pillar{model.PillarProduct}},
		},
		{
			name:  "voice refresh one",
			input: "!voice refresh @RaoulGMI",
			want:  RefreshVoicesCommand{Handle: "RaoulGMI"},
		},
		{
			name:  "refresh shorthand",
			input: "!refresh",
			want:  RefreshVoicesCommand{},
		},
		{
			name:  "remove",
			input: "!remove @whale",
			want:  RemoveAccountCommand{Handle: "whale"},
		},
		{
			name:  "feed",
			input: "!feed Coindesk https://coindesk.com/feed crypto_defi",
			want:  AddFeedCommand{Name: "Coindesk", URL: "https://coindesk.com/feed", Category: model.CategoryCryptoDefi},
		},
		{
			name:  "monitors",
			input: "!monitors",
			want:  ListMonitorsCommand{},
		},
		{
			name:  "voices",
			input: "!voices",
			want:  ListVoicesCommand{},
		},
		{
			name:  "post with topic",
			input: "!post education funding rates for beginners",
			want:  GeneratePostCommand{Pillar: model.PillarEducation, Topic: "funding rates for beginners"},
		},
		{
			name:  "weekly",
			input: "!weekly",
			want:  WeeklyBatchCommand{},
		},
		{
			name:  "help",
			input: "!help",
			want:  HelpCommand{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBang(tt.input)
			if err != nil {
				t.Fatalf("ParseBang(%q) error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseBang(%q)\n got: %#v\nwant: %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBangErrors(t *testing.T) {
	inputs := []string{
		"!",
		"!frobnicate",
		"!add @whale",
		"!add @whale atlantis",
		"!add @whale nigeria 9",
		"!voice",
		"!voice add",
		"!voice tag @whale",
		"!voice tag @whale notapillar",
		"!remove",
		"!feed onlyname",
		"!post",
		"!post notapillar",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseBang(input); err == nil {
				t.Errorf("ParseBang(%q) expected error", input)
			}
		})
	}
}
