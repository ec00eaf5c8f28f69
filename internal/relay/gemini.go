package relay

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/atinyakov/schemeseva/internal/models"
)

// Gemini answers conversations with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates the genai client for cfg.APIKey.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model}, nil
}

// Complete sends the conversation in a single GenerateContent call.
func (g *Gemini) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	system, contents := toGenai(messages)
	var gc *genai.GenerateContentConfig
	if system != nil {
		gc = &genai.GenerateContentConfig{SystemInstruction: system}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, gc)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrNoChoices
	}
	return text, nil
}

// toGenai splits system messages off into a system instruction and maps
// the remaining roles onto user and model turns.
func toGenai(messages []models.ChatMessage) (*genai.Content, []*genai.Content) {
	var (
		system   []string
		contents []*genai.Content
	)
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "system":
			system = append(system, m.Content)
		case "assistant", "model":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return nil, contents
	}
	return genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser), contents
}
