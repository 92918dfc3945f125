package review

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/model"
)

// capturingOracle records the message turns it was handed.
type capturingOracle struct {
	messages []llm.Message
	response string
	err      error
}

func (o *capturingOracle) Complete(_ context.Context, _ string, msgs []llm.Message, _ int) (string, error) {
	o.messages = msgs
	if o.err != nil {
		return "", o.err
	}
	return o.response, nil
}

func TestReviseReplaysFullHistory(t *testing.T) {
	oracle := &capturingOracle{response: "v2 content"}
	e := NewEngine(oracle, "profile")
	r := NewRegistry(24 * time.Hour)

	s, err := r.Create("t1", model.PillarEducation, "funding rates", "v0 content", nil)
	require.NoError(t, err)
	s.appendDraft("v1 content", "make it shorter", "")

	draft, err := e.Revise(context.Background(), s, "now add a number")
	require.NoError(t, err)
	assert.Equal(t, 2, draft.Version)
	assert.Equal(t, "v2 content", draft.Content)

	want := []llm.Message{
		{Role: llm.RoleUser, Content: "Draft a education post about: funding rates"},
		{Role: llm.RoleAssistant, Content: "v0 content"},
		{Role: llm.RoleUser, Content: "make it shorter"},
		{Role: llm.RoleAssistant, Content: "v1 content"},
		{Role: llm.RoleUser, Content: "now add a number"},
	}
	assert.Equal(t, want, oracle.messages)
}

func TestReviseIncludesSourceContext(t *testing.T) {
	oracle := &capturingOracle{response: "v1"}
	e := NewEngine(oracle, "profile")
	r := NewRegistry(24 * time.Hour)

	src := &SourceReference{ID: "42", Text: "the naira moved", AuthorHandle: "whale"}
	s, err := r.Create("t1", model.PillarMarketCommentary, "naira", "v0", src)
	require.NoError(t, err)

	_, err = e.Revise(context.Background(), s, "sharper")
	require.NoError(t, err)

	require.NotEmpty(t, oracle.messages)
	assert.Contains(t, oracle.messages[0].Content, "@whale")
	assert.Contains(t, oracle.messages[0].Content, "the naira moved")
}

func TestReviseWithVoiceAppendsSamples(t *testing.T) {
	oracle := &capturingOracle{response: "styled"}
	e := NewEngine(oracle, "profile")
	r := NewRegistry(24 * time.Hour)

	s, err := r.Create("t1", model.PillarEducation, "x", "v0", nil)
	require.NoError(t, err)

	draft, err := e.ReviseWithVoice(context.Background(), s, "punchier", "RaoulGMI",
		[]string{"sample a", "sample b"})
	require.NoError(t, err)
	assert.Equal(t, "RaoulGMI", draft.VoiceReference)
	assert.Equal(t, "punchier", draft.RevisionRequest)

	last := oracle.messages[len(oracle.messages)-1]
	assert.Equal(t, llm.RoleUser, last.Role)
	assert.Contains(t, last.Content, "@RaoulGMI")
	assert.Contains(t, last.Content, "sample a")
	assert.Contains(t, last.Content, "punchier")
}

func TestReviseFailureAppendsNothing(t *testing.T) {
	oracle := &capturingOracle{err: fmt.Errorf("api down")}
	e := NewEngine(oracle, "profile")
	r := NewRegistry(24 * time.Hour)

	s, err := r.Create("t1", model.PillarEducation, "x", "v0", nil)
	require.NoError(t, err)

	_, err = e.Revise(context.Background(), s, "shorter")
	assert.Error(t, err)
	assert.Len(t, s.Drafts, 1)
}
