package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/model"
)

var ErrNoVoiceMatch = errors.New("no voice reference matches hint")

// VoiceDirectory exposes the stored voice-reference accounts and their
// sampled posts.
type VoiceDirectory interface {
	VoiceReferences(ctx context.Context) ([]model.Account, error)
	SamplesFor(ctx context.Context, handle string, limit int) ([]string, error)
}

// VoiceDetector decides whether a revision request names a voice to imitate
// and resolves the free-text hint to a stored account.
type VoiceDetector struct {
	client llm.Client
	dir    VoiceDirectory
}

func NewVoiceDetector(client llm.Client, dir VoiceDirectory) *VoiceDetector {
	return &VoiceDetector{client: client, dir: dir}
}

const voiceDetectSystemPrompt = `You inspect a revision request for a social-media draft and decide whether it asks to imitate a specific person's or account's writing style.
Respond with JSON only: {"match": true|false, "hint": "<the name or handle as written, empty when match is false>"}
Requests like "make it shorter" or "more data" are not voice requests. Requests like "write it how Raoul would" or "in @CryptoCobain's style" are.`

type voiceDetection struct {
	Match bool   `json:"match"`
	Hint  string `json:"hint"`
}

// Detect returns the voice hint embedded in a revision request, if any.
// Oracle failures read as no voice request; the revision still happens.
func (d *VoiceDetector) Detect(ctx context.Context, text string) (string, bool) {
	raw, err := d.client.Complete(ctx, voiceDetectSystemPrompt,
		[]llm.Message{{Role: llm.RoleUser, Content: text}}, 150)
	if err != nil {
		return "", false
	}
	var res voiceDetection
	if err := llm.DecodeJSON(raw, &res); err != nil {
		return "", false
	}
	if !res.Match || strings.TrimSpace(res.Hint) == "" {
		return "", false
	}
	return strings.TrimSpace(res.Hint), true
}

// Resolve maps a hint to a stored voice reference. It tries, in order:
// exact handle match, substring match either direction, pillar keyword
// match, then one oracle best-guess over the stored list. ErrNoVoiceMatch
// when nothing fits.
func (d *VoiceDetector) Resolve(ctx context.Context, hint string) (*model.Account, error) {
	refs, err := d.dir.VoiceReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("load voice references: %w", err)
	}
	if len(refs) == 0 {
		return nil, ErrNoVoiceMatch
	}

	norm := normalizeHint(hint)

	for i := range refs {
		if normalizeHint(refs[i].Handle) == norm {
			return &refs[i], nil
		}
	}
	for i := range refs {
		h := normalizeHint(refs[i].Handle)
		if strings.Contains(h, norm) || strings.Contains(norm, h) {
			return &refs[i], nil
		}
	}
	if p, ok := model.ParsePillar(hint); ok {
		for i := range refs {
			for _, vp := range refs[i].VoicePillars {
				if vp == p {
					return &refs[i], nil
				}
			}
		}
	}

	return d.bestGuess(ctx, hint, refs)
}

func (d *VoiceDetector) bestGuess(ctx context.Context, hint string, refs []model.Account) (*model.Account, error) {
	var handles []string
	for _, r := range refs {
		handles = append(handles, r.Handle)
	}
	system := `You match a person reference to one handle from a fixed list.
Respond with JSON only: {"handle": "<one handle from the list, or empty when none plausibly matches>"}`
	prompt := fmt.Sprintf("Reference: %q\nHandles: %s", hint, strings.Join(handles, ", "))

	raw, err := d.client.Complete(ctx, system, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, 100)
	if err != nil {
		return nil, ErrNoVoiceMatch
	}
	var res struct {
		Handle string `json:"handle"`
	}
	if err := llm.DecodeJSON(raw, &res); err != nil || res.Handle == "" {
		return nil, ErrNoVoiceMatch
	}
	guess := normalizeHint(res.Handle)
	for i := range refs {
		if normalizeHint(refs[i].Handle) == guess {
			return &refs[i], nil
		}
	}
	return nil, ErrNoVoiceMatch
}

func normalizeHint(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "@"))
}
