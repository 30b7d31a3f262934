package engine

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API with a response schema so the model is
// constrained to the extraction JSON shape.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed ModelClient.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

var extractionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"transactions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date": {
						Type:        genai.TypeString,
						Description: "Transaction date in YYYY-MM-DD format",
					},
					"description": {
						Type:        genai.TypeString,
						Description: "Clean merchant or transaction description",
					},
					"amount": {
						Type:        genai.TypeNumber,
						Description: "Transaction amount (positive for income, negative for expense)",
					},
					"type": {
						Type:        genai.TypeString,
						Enum:        []string{"INCOME", "EXPENSE"},
						Description: "Transaction type",
					},
				},
				Required: []string{"date", "description", "amount", "type"},
			},
		},
	},
	Required: []string{"transactions"},
}

func (g *GeminiClient) GenerateStructured(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   extractionSchema,
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}
