package conversation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short", "A short question", "A short question"},
		{"exactly thirty", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"forty", strings.Repeat("x", 40), strings.Repeat("x", 30) + "..."},
		{"multibyte", strings.Repeat("é", 31), strings.Repeat("é", 30) + "..."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromText(tt.text))
		})
	}
}

func TestRole_UnmarshalLegacyBot(t *testing.T) {
	var msgs []Message
	err := json.Unmarshal([]byte(`[{"role":"user","text":"hi"},{"role":"bot","text":"hello"}]`), &msgs)
	require.NoError(t, err)

	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
}

func TestMessage_JSONOmitsEmptyOptionalFields(t *testing.T) {
	data, err := json.Marshal(Message{Role: RoleUser, Text: "hi", Time: "10:00 AM"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","text":"hi","time":"10:00 AM"}`, string(data))
}

func TestMessage_CloneIsDeep(t *testing.T) {
	orig := Message{Role: RoleAssistant, Sources: []string{"a.csv"}}
	clone := orig.Clone()
	clone.Sources[0] = "b.csv"

	assert.Equal(t, "a.csv", orig.Sources[0])
}

func TestFeedback_Valid(t *testing.T) {
	assert.True(t, FeedbackNone.Valid())
	assert.True(t, FeedbackUp.Valid())
	assert.True(t, FeedbackDown.Valid())
	assert.False(t, Feedback("meh").Valid())
}
