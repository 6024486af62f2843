package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/repositories"
)

// ErrAdviceUnavailable is returned when no text generator is configured.
var ErrAdviceUnavailable = errors.New("advice service is not configured")

// Generator turns a prompt into free text.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GenAIGenerator calls a Gemini model through the genai SDK.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	temperature := float32(0.8)
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return result.Text(), nil
}

const adviceInstruction = "You are a friendly dating coach inside a dating app. " +
	"Give short, kind and practical suggestions. Never invent facts about the other person."

// conversationContextSize is how many recent messages are quoted into the prompt.
const conversationContextSize = 10

// AdviceService builds prompts for the dating-advice feature.
type AdviceService struct {
	gen      Generator
	messages repositories.MessageRepository
	log      *zap.Logger
}

// NewAdviceService accepts a nil generator; Suggest then reports ErrAdviceUnavailable.
func NewAdviceService(gen Generator, messages repositories.MessageRepository, log *zap.Logger) *AdviceService {
	return &AdviceService{gen: gen, messages: messages, log: log}
}

func (s *AdviceService) Suggest(ctx context.Context, userID uint, req models.AdviceRequest) (*models.AdviceResponse, error) {
	if s.gen == nil {
		return nil, ErrAdviceUnavailable
	}

	var prompt strings.Builder
	if req.OtherUserID != 0 && req.OtherUserID != userID {
		history, err := s.messages.GetConversation(ctx, userID, req.OtherUserID)
		if err != nil {
			s.log.Warn("advice without conversation context", zap.Error(err))
		} else if len(history) > 0 {
			if len(history) > conversationContextSize {
				history = history[len(history)-conversationContextSize:]
			}
			prompt.WriteString("Recent conversation:\n")
			for _, m := range history {
				who := "Them"
				if m.SenderID == userID {
					who = "Me"
				}
				fmt.Fprintf(&prompt, "%s: %s\n", who, m.Content)
			}
			prompt.WriteString("\n")
		}
	}
	prompt.WriteString(req.Prompt)

	text, err := s.gen.Generate(ctx, adviceInstruction, prompt.String())
	if err != nil {
		return nil, err
	}
	return &models.AdviceResponse{Suggestion: strings.TrimSpace(text)}, nil
}
