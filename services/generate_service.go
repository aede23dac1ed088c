package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"popularchoice/models"
)

// GenerateService produces survey questions with Gemini. The response is
// requested as raw JSON and validated before anything reaches the host.
type GenerateService struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

func NewGenerateService(apiKey, model string) *GenerateService {
	return &GenerateService{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
	}
}

func (s *GenerateService) IsAvailable() bool {
	return s.apiKey != ""
}

// GeneratedQuestion is one AI-produced catalog entry.
type GeneratedQuestion struct {
	Category string          `json:"category"`
	Text     string          `json:"text"`
	Answers  []models.Answer `json:"answers"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string `json:"response_mime_type"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const generatePrompt = `You are designing questions for a "Family Feud" style game show, where
a survey question is asked to many people and contestants must guess the
most common answers.

Generate 3 questions about the topic %q that could be used in this kind
of game. Each question must have between 4 and 5 possible answers, and
the points of all answers of a question must sum to 100. The answers
should reflect what most people would say or think about the question.

Respond with ONLY valid JSON in this format:

[{
    "category": "the topic given above",
    "text": "the survey question",
    "answers": [
        {"text": "most common answer", "points": 40},
        {"text": "another answer", "points": 25}
    ]
}]

Make the questions creative, fun and suitable for a family game show.`

// Generate asks Gemini for questions about a topic.
func (s *GenerateService) Generate(topic string) ([]GeneratedQuestion, error) {
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	if !s.IsAvailable() {
		return nil, errors.New("question generation is not configured")
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fmt.Sprintf(generatePrompt, topic)}}},
		},
		GenerationConfig: geminiGenerationConfig{
			ResponseMIMEType: "application/json",
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	resp, err := s.httpClient.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("gemini error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini returned no candidates")
	}

	return decodeGenerated(parsed.Candidates[0].Content.Parts[0].Text)
}

// decodeGenerated parses and validates the model's JSON payload.
func decodeGenerated(payload string) ([]GeneratedQuestion, error) {
	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(payload), &questions); err != nil {
		return nil, fmt.Errorf("generated questions are not valid JSON: %w", err)
	}

	for i, q := range questions {
		if err := validateGenerated(q); err != nil {
			return nil, fmt.Errorf("generated question %d is malformed: %w", i+1, err)
		}
	}

	return questions, nil
}

func validateGenerated(q GeneratedQuestion) error {
	if q.Category == "" || q.Text == "" {
		return errors.New("missing category or text")
	}
	if len(q.Answers) == 0 {
		return errors.New("must have at least one answer")
	}
	for _, a := range q.Answers {
		if a.Text == "" {
			return errors.New("answer has empty text")
		}
		if a.Points < 0 {
			return errors.New("answer has negative points")
		}
	}
	return nil
}
