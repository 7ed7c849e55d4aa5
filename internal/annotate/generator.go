// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/research-radar/pkg/types"
)

// huggingFaceAPIURL is the default inference endpoint. Package-level var for
// test substitution.
var huggingFaceAPIURL = "https://api-inference.huggingface.co/models/gpt2"

var (
	// ErrGeneratorStatus is wrapped by every StatusError.
	ErrGeneratorStatus = errors.New("generator returned an error status")

	// ErrNoGeneratedText is returned when a 200 response carries no
	// generated_text.
	ErrNoGeneratedText = errors.New("generator response has no generated_text")
)

// StatusError reports a non-200 generator response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("generator returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("generator returned HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrGeneratorStatus }

// Generator produces free text for a prompt. Implementations make exactly
// one remote call per Generate and never retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HuggingFaceBackend calls a Hugging Face style text-generation endpoint.
type HuggingFaceBackend struct {
	URL       string
	Token     string
	UserAgent string
	Client    *http.Client
}

// NewHuggingFaceBackend builds a backend from configuration. An empty URL
// selects the default endpoint.
func NewHuggingFaceBackend(cfg types.GeneratorConfig, client *http.Client) *HuggingFaceBackend {
	return &HuggingFaceBackend{
		URL:       cfg.URL,
		Token:     cfg.Token,
		UserAgent: cfg.UserAgent,
		Client:    client,
	}
}

type hfRequest struct {
	Inputs string `json:"inputs"`
}

type hfGeneration struct {
	GeneratedText *string `json:"generated_text"`
}

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

// Generate posts {"inputs": prompt} and returns the first generated_text.
func (b *HuggingFaceBackend) Generate(ctx context.Context, prompt string) (string, error) {
	bodyBytes, err := json.Marshal(hfRequest{Inputs: prompt})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := b.URL
	if url == "" {
		url = huggingFaceAPIURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.Token)
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling generator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var gens []hfGeneration
	if err := json.NewDecoder(resp.Body).Decode(&gens); err != nil {
		return "", fmt.Errorf("decoding generator response: %w", err)
	}
	if len(gens) == 0 || gens[0].GeneratedText == nil {
		return "", ErrNoGeneratedText
	}
	return *gens[0].GeneratedText, nil
}
