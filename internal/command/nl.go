package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/model"
)

// confidenceFloor is the parse confidence below which the router asks the
// user to confirm before executing.
const confidenceFloor = 0.7

const nlSystemPrompt = `You parse an operator's natural-language request to a content bot into a structured intent.
Respond with JSON only:
{"intent": "<one of: add_monitor, add_voice, tag_voice, remove_account, add_feed, list_monitors, list_voices, refresh_voices, generate_post, weekly_batch, help, none>",
 "confidence": <0.0-1.0>,
 "entities": {"handle": "", "category": "", "priority": 0, "pillars": [], "topic": "", "name": "", "url": ""},
 "clarification_needed": "<question to ask when the request is ambiguous, else empty>"}
Categories: nigeria, argentina, colombia, global_macro, crypto_defi, reply_target.
Pillars: market_commentary, education, product, social_proof.
Use intent "none" for chatter that is not a request.`

type nlEntities struct {
	Handle   string   `json:"handle"`
	Category string   `json:"category"`
	Priority int      `json:"priority"`
	Pillars  []string `json:"pillars"`
	Topic    string   `json:"topic"`
	Name     string   `json:"name"`
	URL      string   `json:"url"`
}

type nlResult struct {
	Intent        string     `json:"intent"`
	Confidence    float64    `json:"confidence"`
	Entities      nlEntities `json:"entities"`
	Clarification string     `json:"clarification_needed"`
}

// missingFieldError reports a request that parsed to a known intent but
// lacks one required field. It carries the partial command so the user's
// next message can complete it.
type missingFieldError struct {
	field    string
	question string
	partial  Command
}

func (e *missingFieldError) Error() string { return e.question }

// nlParse turns free text into a command plus parse metadata. A nil command
// with empty clarification and nil error means the text was not a request at
// all; a *missingFieldError means the intent is known but a field is needed.
func nlParse(ctx context.Context, client llm.Client, text string) (Command, float64, string, error) {
	raw, err := client.Complete(ctx, nlSystemPrompt,
		[]llm.Message{{Role: llm.RoleUser, Content: text}}, 300)
	if err != nil {
		return nil, 0, "", fmt.Errorf("parse request: %w", err)
	}
	var res nlResult
	if err := llm.DecodeJSON(raw, &res); err != nil {
		return nil, 0, "", fmt.Errorf("parse request: %w", err)
	}
	if res.Clarification != "" {
		return nil, res.Confidence, res.Clarification, nil
	}

	cmd, err := res.toCommand()
	if errors.Is(err, errNotARequest) {
		return nil, res.Confidence, "", nil
	}
	var missing *missingFieldError
	if errors.As(err, &missing) {
		return nil, res.Confidence, "", missing
	}
	if err != nil {
		return nil, res.Confidence, err.Error(), nil
	}
	return cmd, res.Confidence, "", nil
}

func (r nlResult) toCommand() (Command, error) {
	e := r.Entities
	switch r.Intent {
	case "add_monitor":
		priority := e.Priority
		if priority < 1 || priority > 3 {
			priority = 2
		}
		if e.Handle == "" {
			return nil, &missingFieldError{
				field:    "handle",
				question: "Which account should I monitor?",
				partial:  AddMonitorCommand{Priority: priority},
			}
		}
		category, ok := model.ParseCategory(e.Category)
		if !ok {
			return nil, &missingFieldError{
				field:    "category",
				question: fmt.Sprintf("Which category is @%s? (%s)", cleanHandle(e.Handle), categoryList()),
				partial:  AddMonitorCommand{Handle: cleanHandle(e.Handle), Priority: priority},
			}
		}
		return AddMonitorCommand{Handle: cleanHandle(e.Handle), Category: category, Priority: priority}, nil
	case "add_voice":
		if e.Handle == "" {
			return nil, &missingFieldError{
				field:    "handle",
				question: "Which account should I add as a voice reference?",
				partial:  AddVoiceCommand{},
			}
		}
		pillars, _ := parsePillarNames(e.Pillars)
		return AddVoiceCommand{Handle: cleanHandle(e.Handle), Pillars: pillars}, nil
	case "tag_voice":
		if e.Handle == "" {
			return nil, &missingFieldError{
				field:    "handle",
				question: "Which voice reference should I retag?",
				partial:  TagVoiceCommand{},
			}
		}
		pillars, err := parsePillarNames(e.Pillars)
		if err != nil || len(pillars) == 0 {
			return nil, &missingFieldError{
				field:    "pillars",
				question: fmt.Sprintf("Which pillars for @%s? (%s)", cleanHandle(e.Handle), pillarList()),
				partial:  TagVoiceCommand{Handle: cleanHandle(e.Handle)},
			}
		}
		return TagVoiceCommand{Handle: cleanHandle(e.Handle), Pillars: pillars}, nil
	case "remove_account":
		if e.Handle == "" {
			return nil, &missingFieldError{
				field:    "handle",
				question: "Which account should I remove?",
				partial:  RemoveAccountCommand{},
			}
		}
		return RemoveAccountCommand{Handle: cleanHandle(e.Handle)}, nil
	case "add_feed":
		if e.URL == "" {
			return nil, &missingFieldError{
				field:    "url",
				question: "What's the feed URL?",
				partial:  AddFeedCommand{Name: e.Name},
			}
		}
		category, ok := model.ParseCategory(e.Category)
		if !ok {
			category = model.CategoryGlobalMacro
		}
		name := e.Name
		if name == "" {
			name = e.URL
		}
		return AddFeedCommand{Name: name, URL: e.URL, Category: category}, nil
	case "list_monitors":
		return ListMonitorsCommand{}, nil
	case "list_voices":
		return ListVoicesCommand{}, nil
	case "refresh_voices":
		return RefreshVoicesCommand{Handle: cleanHandle(e.Handle)}, nil
	case "generate_post":
		pillar, ok := model.ParsePillar(firstNonEmpty(e.Pillars))
		if !ok {
			return nil, &missingFieldError{
				field:    "pillar",
				question: fmt.Sprintf("Which pillar should the post be? (%s)", pillarList()),
				partial:  GeneratePostCommand{Topic: e.Topic},
			}
		}
		return GeneratePostCommand{Pillar: pillar, Topic: e.Topic}, nil
	case "weekly_batch":
		return WeeklyBatchCommand{}, nil
	case "help":
		return HelpCommand{}, nil
	default:
		return nil, errNotARequest
	}
}

var errNotARequest = fmt.Errorf("not a request")

// fillField merges a user's answer into a partial command waiting on one
// field. It returns a *missingFieldError when the command still needs
// another field, or a plain error when the answer doesn't parse.
func fillField(cmd Command, field, answer string) (Command, error) {
	answer = strings.TrimSpace(answer)
	switch c := cmd.(type) {
	case AddMonitorCommand:
		switch field {
		case "handle":
			h := cleanHandle(firstWord(answer))
			if h == "" {
				return nil, fmt.Errorf("no handle in %q", answer)
			}
			c.Handle = h
			return nil, &missingFieldError{
				field:    "category",
				question: fmt.Sprintf("Which category is @%s? (%s)", c.Handle, categoryList()),
				partial:  c,
			}
		case "category":
			category, ok := model.ParseCategory(firstWord(answer))
			if !ok {
				return nil, fmt.Errorf("unknown category %q", answer)
			}
			c.Category = category
			return c, nil
		}
	case AddVoiceCommand:
		if field == "handle" {
			h := cleanHandle(firstWord(answer))
			if h == "" {
				return nil, fmt.Errorf("no handle in %q", answer)
			}
			c.Handle = h
			return c, nil
		}
	case TagVoiceCommand:
		switch field {
		case "handle":
			h := cleanHandle(firstWord(answer))
			if h == "" {
				return nil, fmt.Errorf("no handle in %q", answer)
			}
			c.Handle = h
			if len(c.Pillars) == 0 {
				return nil, &missingFieldError{
					field:    "pillars",
					question: fmt.Sprintf("Which pillars for @%s? (%s)", c.Handle, pillarList()),
					partial:  c,
				}
			}
			return c, nil
		case "pillars":
			pillars, err := parsePillarNames(splitAnswer(answer))
			if err != nil || len(pillars) == 0 {
				return nil, fmt.Errorf("no pillars in %q", answer)
			}
			c.Pillars = pillars
			return c, nil
		}
	case RemoveAccountCommand:
		if field == "handle" {
			h := cleanHandle(firstWord(answer))
			if h == "" {
				return nil, fmt.Errorf("no handle in %q", answer)
			}
			c.Handle = h
			return c, nil
		}
	case AddFeedCommand:
		if field == "url" {
			url := firstWord(answer)
			if !strings.Contains(url, "://") {
				return nil, fmt.Errorf("no URL in %q", answer)
			}
			c.URL = url
			if c.Name == "" {
				c.Name = url
			}
			if c.Category == "" {
				c.Category = model.CategoryGlobalMacro
			}
			return c, nil
		}
	case GeneratePostCommand:
		if field == "pillar" {
			pillar, ok := model.ParsePillar(firstWord(answer))
			if !ok {
				return nil, fmt.Errorf("unknown pillar %q", answer)
			}
			c.Pillar = pillar
			return c, nil
		}
	}
	return nil, fmt.Errorf("no field %q on %T", field, cmd)
}

func firstWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func splitAnswer(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

func parsePillarNames(names []string) ([]model.Pillar, error) {
	var out []model.Pillar
	for _, name := range names {
		p, ok := model.ParsePillar(name)
		if !ok {
			return nil, fmt.Errorf("unknown pillar %q", name)
		}
		out = append(out, p)
	}
	return out, nil
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// describe renders a command as the confirmation question shown to the
// user before a low-confidence parse executes.
func describe(cmd Command) string {
	switch c := cmd.(type) {
	case AddMonitorCommand:
		return fmt.Sprintf("add @%s to the %s monitors at priority %d", c.Handle, c.Category, c.Priority)
	case AddVoiceCommand:
		if len(c.Pillars) > 0 {
			return fmt.Sprintf("add @%s as a voice reference for %s", c.Handle, joinPillars(c.Pillars))
		}
		return fmt.Sprintf("add @%s as a voice reference", c.Handle)
	case TagVoiceCommand:
		return fmt.Sprintf("retag @%s for %s", c.Handle, joinPillars(c.Pillars))
	case RemoveAccountCommand:
		return fmt.Sprintf("stop monitoring @%s", c.Handle)
	case AddFeedCommand:
		return fmt.Sprintf("add feed %s (%s)", c.Name, c.URL)
	case ListMonitorsCommand:
		return "list the monitors"
	case ListVoicesCommand:
		return "list the voice references"
	case RefreshVoicesCommand:
		if c.Handle != "" {
			return fmt.Sprintf("refresh samples for @%s", c.Handle)
		}
		return "refresh all voice samples"
	case GeneratePostCommand:
		if c.Topic != "" {
			return fmt.Sprintf("draft a %s post about %q", c.Pillar, c.Topic)
		}
		return fmt.Sprintf("draft a %s post", c.Pillar)
	case WeeklyBatchCommand:
		return "draft next week's content batch"
	default:
		return "do that"
	}
}

func joinPillars(pillars []model.Pillar) string {
	var names []string
	for _, p := range pillars {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
