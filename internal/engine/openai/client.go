// Package openai implements the transcription and summarization engine
// contracts on top of the OpenAI API.
package openai

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"meetapi/internal/config"
)

func newClient(cfg config.OpenAIConfig) (openaigo.Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return openaigo.Client{}, fmt.Errorf("openai api key is required")
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(timeout),
	}
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	return openaigo.NewClient(opts...), nil
}
