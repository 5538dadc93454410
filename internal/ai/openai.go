package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/phildougherty/quick-assistant/internal/audio"
)

// whisperPrompt primes the transcription model toward clean
// punctuation.
const whisperPrompt = "And now, a transcription from random language(s) that concludes with perfect punctuation: "

// ProviderConfig represents configuration for the OpenAI provider
type ProviderConfig struct {
	APIKey       string
	Endpoint     string
	DefaultModel string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
}

// OpenAIProvider implements the OpenAI provider
type OpenAIProvider struct {
	config     ProviderConfig
	httpClient *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config ProviderConfig) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	if config.Endpoint == "" {
		config.Endpoint = "https://api.openai.com/v1"
	}

	if config.DefaultModel == "" {
		config.DefaultModel = "gpt-4o"
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = 512
	}

	if config.Temperature == 0 {
		config.Temperature = 0.7
	}

	if config.Timeout == 0 {
		config.Timeout = 10 * time.Minute // streaming responses can run long
	}

	return &OpenAIProvider{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// StreamChat streams a chat completion
func (p *OpenAIProvider) StreamChat(ctx context.Context, messages []Message, options StreamOptions) (<-chan StreamResponse, error) {
	responseChan := make(chan StreamResponse, 10)

	if options.Model == "" {
		options.Model = p.config.DefaultModel
	}
	if options.MaxTokens == 0 {
		options.MaxTokens = p.config.MaxTokens
	}
	if options.Temperature == 0 {
		options.Temperature = p.config.Temperature
	}

	requestBody := map[string]interface{}{
		"model":       options.Model,
		"messages":    messages,
		"max_tokens":  options.MaxTokens,
		"temperature": options.Temperature,
		"stream":      true,
	}

	if len(options.Functions) > 0 {
		tools := make([]map[string]interface{}, len(options.Functions))
		for i, function := range options.Functions {
			tools[i] = map[string]interface{}{
				"type": "function",
				"function": map[string]interface{}{
					"name":        function.Name,
					"description": function.Description,
					"parameters":  function.Parameters,
				},
			}
		}
		requestBody["tools"] = tools
		requestBody["tool_choice"] = "auto"
	}

	reqBytes, err := json.Marshal(requestBody)
	if err != nil {
		close(responseChan)
		return responseChan, NewProviderError(p.Name(), "failed to marshal request", "marshal_error")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.config.Endpoint+"/chat/completions", bytes.NewBuffer(reqBytes))
	if err != nil {
		close(responseChan)
		return responseChan, NewProviderError(p.Name(), "failed to create request", "request_error")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	go func() {
		defer close(responseChan)

		resp, err := p.httpClient.Do(req)
		if err != nil {
			responseChan <- StreamResponse{
				Error: NewProviderError(p.Name(), "request failed: "+err.Error(), "request_failed"),
			}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			responseChan <- StreamResponse{
				Error: NewProviderError(p.Name(), fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)), "http_error"),
			}
			return
		}

		ProcessSSEStream(resp.Body, p.Name(), responseChan)
	}()

	return responseChan, nil
}

// Transcribe uploads a recording to the Whisper API and returns the
// transcript. The audio is converted to opus first to stay well under
// the API's content size limit.
func (p *OpenAIProvider) Transcribe(ctx context.Context, audioPath string) (string, error) {
	uploadPath := audioPath
	if filepath.Ext(audioPath) != ".opus" {
		opusPath, err := audio.ConvertToOpus(audioPath)
		switch {
		case err == nil:
			defer os.Remove(opusPath)
			uploadPath = opusPath
		case errors.Is(err, audio.ErrFFmpegNotFound):
			// upload the recording as-is
		default:
			return "", fmt.Errorf("failed to convert audio to opus: %w", err)
		}
	}

	file, err := os.Open(uploadPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(uploadPath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}
	if err := writer.WriteField("model", "whisper-1"); err != nil {
		return "", err
	}
	if err := writer.WriteField("prompt", whisperPrompt); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.config.Endpoint+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", NewProviderError(p.Name(), "transcription request failed: "+err.Error(), "request_failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcription response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", NewProviderError(p.Name(), fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody)), "http_error")
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse transcription response: %w", err)
	}

	return result.Text, nil
}

// Speech synthesizes text with the TTS API and returns MP3 bytes
func (p *OpenAIProvider) Speech(ctx context.Context, text string, voice string) ([]byte, error) {
	requestBody := map[string]interface{}{
		"model": "tts-1",
		"input": text,
		"voice": voice,
	}

	reqBytes, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.config.Endpoint+"/audio/speech", bytes.NewBuffer(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, NewProviderError(p.Name(), "speech request failed: "+err.Error(), "request_failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(p.Name(), fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)), "http_error")
	}

	return io.ReadAll(resp.Body)
}
