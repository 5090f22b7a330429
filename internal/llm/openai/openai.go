/*
Copyright © 2023 Zak Reynolds <zak.reynolds@zakjr.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"zr3/muse/internal/config"
	"zr3/muse/internal/imagefile"
	"zr3/muse/internal/persona"
	"zr3/muse/internal/prompts"
)

// Client implements llm.Provider over the chat completions API.
type Client struct {
	api          *openai.Client
	personaModel string
	storyModel   string
	visionModel  string
}

func NewClient(cfg config.LLM, apiKey string) *Client {
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	// backstop for calls made without a deadline
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{
		api:          openai.NewClientWithConfig(clientConfig),
		personaModel: cfg.PersonaModel,
		storyModel:   cfg.StoryModel,
		visionModel:  cfg.VisionModel,
	}
}

func (c *Client) Model() string {
	return c.visionModel
}

func (c *Client) ExtractPersona(ctx context.Context, sample string) (string, error) {
	return c.createChatCompletion(ctx, c.personaModel, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompts.PersonaSystem},
		{Role: openai.ChatMessageRoleUser, Content: prompts.PersonaExtraction(sample)},
	})
}

func (c *Client) GenerateStory(ctx context.Context, p *persona.Persona, descriptions []string) (string, error) {
	return c.createChatCompletion(ctx, c.storyModel, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompts.StorySystem},
		{Role: openai.ChatMessageRoleUser, Content: prompts.Story(p, descriptions)},
	})
}

func (c *Client) AnalyzeImage(ctx context.Context, img *imagefile.Image) (string, error) {
	return c.createChatCompletion(ctx, c.visionModel, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: prompts.ImageDescription(img.Context()),
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    img.DataURL(),
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		},
	})
}

func (c *Client) createChatCompletion(ctx context.Context, model string, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion with %s: %w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion with " + model + ": no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
