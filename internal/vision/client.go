package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const extractionPrompt = `You are given a screenshot from a concert history app or a ticket stub.
Extract every concert you can identify and respond with JSON only, no prose:
{"shows": [{"artist": "", "venue": "", "date": "", "city": ""}]}
Use the date exactly as it appears in the image. Leave fields you cannot
read as empty strings. If the image contains no concerts, respond with
{"shows": []}.`

// ShowRecord is one concert extracted from a screenshot. Dates come
// back raw; normalization happens downstream.
type ShowRecord struct {
	Artist string `json:"artist"`
	Venue  string `json:"venue"`
	Date   string `json:"date"`
	City   string `json:"city"`
}

// Client extracts structured show records from screenshots.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewClient creates a vision client. model defaults to gpt-4o-mini when
// empty.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: 0.1,
		maxTokens:   2000,
	}
}

// ExtractShows reads concerts out of an image. An image with no
// recognizable concerts yields an empty slice, not an error.
func (c *Client) ExtractShows(ctx context.Context, image []byte, mediaType string) ([]ShowRecord, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("image cannot be empty")
	}
	if mediaType == "" {
		mediaType = "image/png"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(image))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: extractionPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices")
	}

	return parseShows(resp.Choices[0].Message.Content)
}

func parseShows(content string) ([]ShowRecord, error) {
	cleaned := cleanJSONResponse(content)

	var payload struct {
		Shows []ShowRecord `json:"shows"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parsing vision response: %w", err)
	}
	return payload.Shows, nil
}

// cleanJSONResponse strips markdown code fences some models wrap
// around JSON output.
func cleanJSONResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	}
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}
