package openai

import (
	"context"
	"fmt"
	"strings"

	openaigo "github.com/openai/openai-go/v3"

	"meetapi/internal/config"
	"meetapi/internal/engine"
)

const summarySystemPrompt = "You are an assistant specialized in meeting minutes. " +
	"Extract the important information from the transcript and produce a structured summary."

// Summarizer implements engine.SummarizationEngine via chat completions.
type Summarizer struct {
	client openaigo.Client
	model  string
}

// NewSummarizer builds a Summarizer from config.
func NewSummarizer(cfg config.OpenAIConfig) (*Summarizer, error) {
	cli, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Summarizer{client: cli, model: cfg.SummaryModel}, nil
}

var _ engine.SummarizationEngine = (*Summarizer)(nil)

// Summarize asks the model for structured minutes for the given transcript.
func (s *Summarizer) Summarize(ctx context.Context, transcript string, participants []string) (string, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(s.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.SystemMessage(summarySystemPrompt),
			openaigo.UserMessage(buildSummaryPrompt(transcript, participants)),
		},
		MaxTokens:   openaigo.Int(1000),
		Temperature: openaigo.Float(0.3),
	})
	if err != nil {
		return "", fmt.Errorf("summarization request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summarization request: empty response")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("summarization request: empty summary")
	}
	return out, nil
}

func buildSummaryPrompt(transcript string, participants []string) string {
	var b strings.Builder
	b.WriteString("Summarize the following meeting transcript.\n")
	if len(participants) > 0 {
		b.WriteString("\nParticipants: ")
		b.WriteString(strings.Join(participants, ", "))
		b.WriteString("\n")
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(transcript)
	b.WriteString("\n\nUse this structure:\n\n")
	b.WriteString("## Meeting overview\n- Main topics and decisions\n- Key points\n\n")
	b.WriteString("## Action items\n- Concrete tasks with owner and due date\n\n")
	b.WriteString("## Next meeting\n- Topics to pick up next time\n\n")
	b.WriteString("Keep the summary concise and practical.")
	return b.String()
}
