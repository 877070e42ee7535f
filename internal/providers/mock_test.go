package providers

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestMockDefaultAnswerIsLongEnoughToUse(t *testing.T) {
	m := NewMockProvider()
	resp, info, err := m.Generate(context.Background(), GenerateRequest{Prompt: "q"})
	require.NoError(t, err)
	require.Equal(t, "mock", info.Name)
	require.Greater(t, utf8.RuneCountInString(resp.Text), 300)
	require.Equal(t, 1, m.CallCount())
}

func TestMockReturnsConfiguredError(t *testing.T) {
	m := &MockProvider{Err: errors.New("boom")}
	_, _, err := m.Generate(context.Background(), GenerateRequest{})
	require.EqualError(t, err, "boom")
}
