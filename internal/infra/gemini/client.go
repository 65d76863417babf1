// Package gemini drafts quizzes with the Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/service"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModelID = "gemini-1.5-flash"

	maxResponseBytes = 4 << 20
)

var ErrNoContent = errors.New("gemini: response has no quiz content")

const apiKeyHeader = "x-goog-api-key"

// Client calls the generateContent endpoint of one model.
type Client struct {
	baseURL string
	modelID string
	apiKey  string
	http    *http.Client
}

// NewClient creates a new Gemini client. Empty baseURL and modelID fall
// back to the public endpoint and DefaultModelID.
func NewClient(apiKey, modelID, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if modelID == "" {
		modelID = DefaultModelID
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		modelID: modelID,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type quizPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Questions   []struct {
		Text    string `json:"text"`
		Options []struct {
			Text      string `json:"text"`
			IsCorrect bool   `json:"isCorrect"`
		} `json:"options"`
	} `json:"questions"`
}

// GenerateQuiz asks the model for a quiz about req.Content.
func (c *Client) GenerateQuiz(ctx context.Context, req service.GenerationRequest) (*entities.QuizDraft, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.modelID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Never put the key in the URL: transport errors quote it and get logged.
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned %s: %s", resp.Status, truncate(string(raw), 200))
	}

	return parseResponse(raw)
}

func parseResponse(raw []byte) (*entities.QuizDraft, error) {
	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, ErrNoContent
	}

	// The model wraps the JSON object in prose or code fences.
	text := gr.Candidates[0].Content.Parts[0].Text
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, ErrNoContent
	}

	var p quizPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &p); err != nil {
		return nil, fmt.Errorf("decode generated quiz: %w", err)
	}
	if len(p.Questions) == 0 {
		return nil, ErrNoContent
	}

	draft := &entities.QuizDraft{Title: p.Title, Description: p.Description}
	for _, q := range p.Questions {
		dq := entities.DraftQuestion{Text: q.Text}
		for _, o := range q.Options {
			dq.Options = append(dq.Options, entities.DraftOption{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		draft.Questions = append(draft.Questions, dq)
	}

	return draft, nil
}

var promptTemplate = template.Must(template.New("prompt").Parse(
	`Generate a quiz with {{.NumQuestions}} multiple-choice questions about the following {{.SourceType}}:

{{.Content}}

The quiz should be at {{.Difficulty}} level.
For each question, provide 4 options with exactly one correct answer.
The correct answer must not always be the first option.
The quiz should be in French.
Format the response as a JSON object like this:
{
  "title": "Quiz title",
  "description": "Brief description",
  "questions": [
    {
      "text": "Question text",
      "options": [
        { "text": "Option 1", "isCorrect": true },
        { "text": "Option 2", "isCorrect": false },
        { "text": "Option 3", "isCorrect": false },
        { "text": "Option 4", "isCorrect": false }
      ]
    }
  ]
}
`))

func buildPrompt(req service.GenerationRequest) (string, error) {
	if req.SourceType == "" {
		req.SourceType = "text"
	}
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
