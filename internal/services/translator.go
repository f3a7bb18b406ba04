package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/atwlabs/novel-workspace/internal/config"
	"github.com/atwlabs/novel-workspace/pkg/logger"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Translator produces a target-language rendition of a chapter text.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// LLMTranslator calls the configured model provider.
type LLMTranslator struct {
	cfg config.TranslationConfig
}

func NewTranslator(cfg *config.TranslationConfig) *LLMTranslator {
	return &LLMTranslator{cfg: *cfg}
}

func (t *LLMTranslator) Provider() string { return t.cfg.Provider }
func (t *LLMTranslator) Model() string    { return t.cfg.Model }

// TargetLanguage is the language used when a caller does not name one.
func (t *LLMTranslator) TargetLanguage() string {
	if t.cfg.TargetLanguage == "" {
		return "Burmese"
	}
	return t.cfg.TargetLanguage
}

func buildTranslationPrompt(text, targetLanguage string) string {
	return fmt.Sprintf(`You are a professional translator for web novels.
Translate the following text into natural, fluent %s.
Maintain the original tone and style.
Do not add any explanations or notes, just the translation.

Original Text:
%s`, targetLanguage, text)
}

// Translate makes one call to the provider; there is no retry.
func (t *LLMTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if t.cfg.APIKey == "" && t.cfg.Provider != "ollama" {
		return "", ErrTranslatorNotConfigured
	}
	if targetLanguage == "" {
		targetLanguage = t.TargetLanguage()
	}
	prompt := buildTranslationPrompt(text, targetLanguage)

	logger.Debug().
		Str("provider", t.cfg.Provider).
		Str("model", t.cfg.Model).
		Int("chars", len(text)).
		Str("target", targetLanguage).
		Msg("translation request")

	var (
		out string
		err error
	)
	switch t.cfg.Provider {
	case "anthropic":
		out, err = t.callAnthropic(ctx, prompt)
	case "ollama":
		out, err = t.callOllama(ctx, prompt)
	case "azure":
		out, err = t.callAzure(ctx, prompt)
	case "openai":
		out, err = t.callOpenAI(ctx, prompt)
	case "gemini", "":
		out, err = t.callGemini(ctx, prompt)
	default:
		// any other name is treated as an OpenAI-compatible endpoint
		out, err = t.callOpenAI(ctx, prompt)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: empty response from %s", ErrTranslationFailed, t.cfg.Provider)
	}
	return out, nil
}

func (t *LLMTranslator) temperature() float32 {
	if t.cfg.Temperature > 0 {
		return float32(t.cfg.Temperature)
	}
	return 0.3
}

func (t *LLMTranslator) callOpenAI(ctx context.Context, prompt string) (string, error) {
	clientConfig := openai.DefaultConfig(t.cfg.APIKey)
	if t.cfg.BaseURL != "" {
		clientConfig.BaseURL = t.cfg.BaseURL
	}
	return t.chatCompletion(ctx, openai.NewClientWithConfig(clientConfig), prompt)
}

// callAzure uses the model field as the deployment name.
func (t *LLMTranslator) callAzure(ctx context.Context, prompt string) (string, error) {
	clientConfig := openai.DefaultAzureConfig(t.cfg.APIKey, t.cfg.BaseURL)
	return t.chatCompletion(ctx, openai.NewClientWithConfig(clientConfig), prompt)
}

func (t *LLMTranslator) chatCompletion(ctx context.Context, client *openai.Client, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: t.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: t.temperature(),
	}
	if t.cfg.MaxTokens > 0 {
		req.MaxTokens = t.cfg.MaxTokens
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (t *LLMTranslator) callAnthropic(ctx context.Context, prompt string) (string, error) {
	opts := []option.RequestOption{option.WithAPIKey(t.cfg.APIKey)}
	if t.cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(t.cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := int64(t.cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 8192
	}
	model := t.cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	return content.String(), nil
}

func (t *LLMTranslator) callOllama(ctx context.Context, prompt string) (string, error) {
	baseURL := t.cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	model := t.cfg.Model
	if model == "" {
		model = "llama3"
	}

	stream := false
	var content strings.Builder
	err = client.Chat(ctx, &api.ChatRequest{
		Model:    model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": t.temperature(),
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return content.String(), nil
}

func (t *LLMTranslator) callGemini(ctx context.Context, prompt string) (string, error) {
	cc := &genai.ClientConfig{
		APIKey:  t.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if t.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: t.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	model := t.cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(t.temperature()),
	}
	if t.cfg.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(t.cfg.MaxTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
