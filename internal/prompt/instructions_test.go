package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"legalchat/internal/model"
)

func TestBuildPayload_Golden(t *testing.T) {
	p := BuildPayload(PayloadInput{
		Context:  "Land Act:\ntenure",
		Language: "Luganda",
		History: []model.Message{
			{Role: model.RoleUser, Content: "Who owns land?"},
			{Role: model.RoleAssistant, Content: "Several tenure systems apply."},
			{Role: model.RoleSystem, Content: "hidden"},
		},
		Question: "What is mailo?",
	})

	g := goldie.New(t)
	g.Assert(t, "chat_payload", []byte(p.System))
	assert.Equal(t, "What is mailo?", p.User)
}

func TestBuildPayload_Defaults(t *testing.T) {
	p := BuildPayload(PayloadInput{Context: "  ", Question: "hello there"})
	assert.Contains(t, p.System, "Respond in English.")
	assert.True(t, strings.HasSuffix(p.System, "Current context:\n"+FallbackContext))
	assert.NotContains(t, p.System, "Conversation so far")
}

func TestBuildPayload_HistoryWindow(t *testing.T) {
	var history []model.Message
	for i := 0; i < 15; i++ {
		history = append(history, model.Message{Role: model.RoleUser, Content: fmt.Sprintf("turn-%02d", i)})
	}
	p := BuildPayload(PayloadInput{Context: "c", History: history, Question: "q"})
	assert.NotContains(t, p.System, "turn-04")
	assert.Contains(t, p.System, "turn-05")
	assert.Contains(t, p.System, "turn-14")
}

func TestBuildAnalysisPayload(t *testing.T) {
	p := BuildAnalysisPayload("lease.pdf", "rent is due", "", "")
	assert.Contains(t, p.System, "Document (lease.pdf):\nrent is due")
	assert.Contains(t, p.System, "Respond in English")
	assert.Equal(t, "Provide a detailed analysis of this document.", p.User)

	p = BuildAnalysisPayload("lease.pdf", "rent is due", "When is rent due?", "Swahili")
	assert.Equal(t, "When is rent due?", p.User)
	assert.Contains(t, p.System, "Respond in Swahili")
}
