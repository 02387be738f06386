// Package gemini implements assessment.Generator on top of the Google Gen AI
// SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/Skufu/CareFusion/internal/assessment"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("gemini: empty response")

type Generator struct {
	client *genai.Client
}

// New builds a Gemini API client for apiKey. An empty key is rejected by
// the SDK, so callers only construct a Generator when one is configured.
func New(ctx context.Context, apiKey string) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Generator{client: client}, nil
}

func (g *Generator) Generate(ctx context.Context, req assessment.GenerateRequest) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), generateConfig(req.Schema))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func generateConfig(s *assessment.Schema) *genai.GenerateContentConfig {
	if s == nil {
		return nil
	}
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toSchema(s),
	}
}

func toSchema(s *assessment.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:     toType(s.Type),
		Items:    toSchema(s.Items),
		Required: append([]string(nil), s.Required...),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSchema(prop)
		}
	}
	return out
}

func toType(t assessment.SchemaType) genai.Type {
	switch t {
	case assessment.TypeObject:
		return genai.TypeObject
	case assessment.TypeArray:
		return genai.TypeArray
	case assessment.TypeNumber:
		return genai.TypeNumber
	default:
		return genai.TypeString
	}
}
