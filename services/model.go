package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"tripforge/logger"
)

// ModelClient is the generative-model collaborator: a HuggingFace-hosted
// instruct model reached over plain HTTP. Generate returns the decoded
// response body untouched, because the provider's shape drifts and the
// extractor is the one place that copes with it.
type ModelClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

var modelClient *ModelClient

func InitModel() {
	model := os.Getenv("HF_MODEL")
	if model == "" {
		model = "mistralai/Mistral-7B-Instruct-v0.3"
	}

	modelClient = &ModelClient{
		apiKey: os.Getenv("HUGGINGFACE_API_KEY"),
		model:  model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	if modelClient.apiKey != "" {
		logger.Get().Infow("model client initialized", "model", model)
	} else {
		logger.Get().Warn("HUGGINGFACE_API_KEY not set; itinerary generation will fail")
	}
}

func GetModelClient() *ModelClient {
	return modelClient
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

// Generate performs one blocking round trip to the model.
func (c *ModelClient) Generate(ctx context.Context, prompt string) (any, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("huggingface API key not configured")
	}

	reqBody := hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens:   2048,
			Temperature:    0.6,
			ReturnFullText: false,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("https://api-inference.huggingface.co/models/%s", c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, fmt.Errorf("model is loading, retry in a few seconds")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model API error (%d): %s", resp.StatusCode, string(body))
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		// Some providers return bare text; hand it to the extractor as-is.
		return string(body), nil
	}
	return raw, nil
}
