package command

import (
	"fmt"
	"strconv"
	"strings"

	"marks-content-agent/internal/model"
)

// ParseBang parses an explicit "!" command. The error text is operator
// facing and suggests the expected form.
func ParseBang(text string) (Command, error) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(text), "!"))
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command, try `!help`")
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "add", "monitor":
		return parseAddMonitor(args)
	case "voice":
		return parseVoice(args)
	case "remove", "rm":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: `!remove @handle`")
		}
		return RemoveAccountCommand{Handle: cleanHandle(args[0])}, nil
	case "feed":
		return parseFeed(args)
	case "monitors", "list":
		return ListMonitorsCommand{}, nil
	case "voices":
		return ListVoicesCommand{}, nil
	case "refresh":
		cmd := RefreshVoicesCommand{}
		if len(args) > 0 {
			cmd.Handle = cleanHandle(args[0])
		}
		return cmd, nil
	case "post":
		return parsePost(args)
	case "weekly":
		return WeeklyBatchCommand{}, nil
	case "help":
		return HelpCommand{}, nil
	default:
		return nil, fmt.Errorf("unknown command `!%s`, try `!help`", verb)
	}
}

func parseAddMonitor(args []string) (Command, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("usage: `!add @handle category [priority]`")
	}
	category, ok := model.ParseCategory(args[1])
	if !ok {
		return nil, fmt.Errorf("unknown category %q, one of: %s", args[1], categoryList())
	}
	cmd := AddMonitorCommand{Handle: cleanHandle(args[0]), Category: category, Priority: 2}
	if len(args) > 2 {
		p, err := strconv.Atoi(args[2])
		if err != nil || p < 1 || p > 3 {
			return nil, fmt.Errorf("priority must be 1, 2 or 3")
		}
		cmd.Priority = p
	}
	return cmd, nil
}

func parseVoice(args []string) (Command, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: `!voice add @handle [pillars]`, `!voice tag @handle pillars` or `!voice refresh [@handle]`")
	}
	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: `!voice add @handle [pillars]`")
		}
		pillars, err := parsePillars(args[2:])
		if err != nil {
			return nil, err
		}
		return AddVoiceCommand{Handle: cleanHandle(args[1]), Pillars: pillars}, nil
	case "tag":
		if len(args) < 3 {
			return nil, fmt.Errorf("usage: `!voice tag @handle pillar[,pillar]`")
		}
		pillars, err := parsePillars(args[2:])
		if err != nil {
			return nil, err
		}
		return TagVoiceCommand{Handle: cleanHandle(args[1]), Pillars: pillars}, nil
	case "refresh":
		cmd := RefreshVoicesCommand{}
		if len(args) > 1 {
			cmd.Handle = cleanHandle(args[1])
		}
		return cmd, nil
	default:
		return nil, fmt.Errorf("unknown voice subcommand %q", args[0])
	}
}

func parseFeed(args []string) (Command, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("usage: `!feed name url category`")
	}
	category, ok := model.ParseCategory(args[2])
	if !ok {
		return nil, fmt.Errorf("unknown category %q, one of: %s", args[2], categoryList())
	}
	return AddFeedCommand{Name: args[0], URL: args[1], Category: category}, nil
}

func parsePost(args []string) (Command, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: `!post pillar [topic]`")
	}
	pillar, ok := model.ParsePillar(args[0])
	if !ok {
		return nil, fmt.Errorf("unknown pillar %q, one of: %s", args[0], pillarList())
	}
	return GeneratePostCommand{Pillar: pillar, Topic: strings.Join(args[1:], " ")}, nil
}

func parsePillars(args []string) ([]model.Pillar, error) {
	var out []model.Pillar
	for _, arg := range args {
		for _, token := range strings.Split(arg, ",") {
			if token = strings.TrimSpace(token); token == "" {
				continue
			}
			p, ok := model.ParsePillar(token)
			if !ok {
				return nil, fmt.Errorf("unknown pillar %q, one of: %s", token, pillarList())
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func cleanHandle(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}

func categoryList() string {
	var names []string
	for _, c := range model.ValidCategories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func pillarList() string {
	var names []string
	for _, p := range model.ValidPillars() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
