package llm

import (
	"context"
	"errors"

	"meetingbot/pkg/config"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// FallbackReply is returned to the user whenever the completion endpoint
// fails; the bot never surfaces a raw transport error in chat.
const FallbackReply = "Sorry, I couldn't process that request right now."

const emptyReply = "I'm not sure how to respond to that."

type Service struct {
	client *openai.Client
	model  string
}

func NewService(cfg *config.Config) *Service {
	client := openai.NewClient(cfg.OpenAIKey)
	return &Service{
		client: client,
		model:  openai.GPT4Dot1,
	}
}

// Complete sends the prompt and returns plain text. Transport and quota
// failures are swallowed here: the caller always gets usable reply text.
func (s *Service) Complete(ctx context.Context, prompt string) string {
	text, err := s.complete(ctx, prompt, nil)
	if err != nil {
		logrus.Errorf("OpenAI request failed: %v", err)
		return FallbackReply
	}
	if text == "" {
		return emptyReply
	}
	return text
}

// CompleteForJSON sends the prompt with a JSON response format. The caller is
// responsible for extracting and validating the JSON from the reply.
func (s *Service) CompleteForJSON(ctx context.Context, prompt string) (string, error) {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}

	text, err := s.complete(ctx, prompt, format)
	if err != nil {
		logrus.Errorf("OpenAI JSON request failed: %v", err)
		return "", err
	}
	return text, nil
}

func (s *Service) complete(ctx context.Context, prompt string, format *openai.ChatCompletionResponseFormat) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: format,
	}

	resp, err := s.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}
