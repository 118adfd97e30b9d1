// Package advisor forwards a financial snapshot to an external narrative
// generator and passes its answer back unmodified.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/paycycle/internal/logging"
	"fjacquet/paycycle/internal/snapshot"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// DefaultRequest is sent when the caller does not ask anything specific.
const DefaultRequest = "Review this financial snapshot."

// ErrDisabled is returned when no advisor is configured.
var ErrDisabled = errors.New("advisor is disabled")

// Advisor turns a snapshot into free-text advice.
type Advisor interface {
	Advise(ctx context.Context, snap *snapshot.Snapshot, request string) (string, error)
}

// Disabled is the Advisor used when AI is turned off.
type Disabled struct{}

// Advise always fails with ErrDisabled.
func (Disabled) Advise(context.Context, *snapshot.Snapshot, string) (string, error) {
	return "", ErrDisabled
}

// contentGenerator is the part of *genai.GenerativeModel used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiAdvisor calls the Gemini API.
type GeminiAdvisor struct {
	client  *genai.Client
	model   contentGenerator
	timeout time.Duration
	logger  logging.Logger
}

// NewGeminiAdvisor creates a client for model authenticated with apiKey.
func NewGeminiAdvisor(ctx context.Context, apiKey, model string, timeout time.Duration, logger logging.Logger) (*GeminiAdvisor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = logging.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiAdvisor{
		client:  client,
		model:   client.GenerativeModel(model),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Advise sends request followed by the JSON snapshot and returns the text of
// the first candidate as received.
func (a *GeminiAdvisor) Advise(ctx context.Context, snap *snapshot.Snapshot, request string) (string, error) {
	if snap == nil {
		return "", fmt.Errorf("snapshot is required")
	}
	if strings.TrimSpace(request) == "" {
		request = DefaultRequest
	}

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	prompt := request + "\n\n" + string(payload)

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		a.logger.WithError(err).Error("Gemini request failed")
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	a.logger.Info("Advice received",
		logging.F(logging.FieldDuration, time.Since(started).Milliseconds()),
		logging.F("chars", len(text)))
	return text, nil
}

// Close releases the underlying client.
func (a *GeminiAdvisor) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from Gemini API")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text in Gemini response")
	}
	return b.String(), nil
}
