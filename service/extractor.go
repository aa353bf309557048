package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"appealdraft-backend/models"
)

// Extractor turns a stored document, addressed by URL, into flat key/value
// facts. The pipeline injects it so tests can substitute fakes.
type Extractor interface {
	Extract(ctx context.Context, documentURL string) (models.ParsedData, error)
}

const (
	analysisModel  = "prebuilt-document"
	maxRetries     = 3
	initialBackoff = time.Second
)

// DocumentAnalysisClient calls the document-analysis REST endpoint to pull
// key/value pairs out of a scanned or typed denial letter.
type DocumentAnalysisClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewDocumentAnalysisClientFromEnv builds the analysis client from
// ANALYSIS_API_ENDPOINT and ANALYSIS_API_KEY.
func NewDocumentAnalysisClientFromEnv() (*DocumentAnalysisClient, error) {
	endpoint := os.Getenv("ANALYSIS_API_ENDPOINT")
	apiKey := os.Getenv("ANALYSIS_API_KEY")
	if endpoint == "" || apiKey == "" {
		return nil, fmt.Errorf("ANALYSIS_API_ENDPOINT and ANALYSIS_API_KEY environment variables are required")
	}
	return NewDocumentAnalysisClient(endpoint, apiKey), nil
}

// NewDocumentAnalysisClient creates a document analysis client
func NewDocumentAnalysisClient(endpoint, apiKey string) *DocumentAnalysisClient {
	return &DocumentAnalysisClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// analyzeRequest is the request body for a URL-based analysis call
type analyzeRequest struct {
	URLSource string `json:"urlSource"`
}

// analyzeResponse is the subset of the analysis result the pipeline consumes
type analyzeResponse struct {
	KeyValuePairs []keyValuePair `json:"keyValuePairs"`
}

type keyValuePair struct {
	Key   *contentField `json:"key"`
	Value *contentField `json:"value"`
}

type contentField struct {
	Content string `json:"content"`
}

// Extract analyzes the document at documentURL and returns the extracted
// key/value pairs. Transient failures are retried with doubling backoff;
// client errors (400/401) are not retried.
func (c *DocumentAnalysisClient) Extract(ctx context.Context, documentURL string) (models.ParsedData, error) {
	reqBody := analyzeRequest{URLSource: documentURL}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/documentModels/%s:analyze", c.endpoint, analysisModel)

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp analyzeResponse
			if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
				resp.Body.Close()
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", err)
				}
				continue
			}
			resp.Body.Close()

			facts := make(models.ParsedData)
			for _, pair := range apiResp.KeyValuePairs {
				if pair.Key == nil || pair.Value == nil {
					continue
				}
				key := strings.TrimSpace(pair.Key.Content)
				value := strings.TrimSpace(pair.Value.Content)
				if key != "" && value != "" {
					facts[key] = value
				}
			}
			// A document the service could not read anything out of is a
			// failed extraction, not an empty success.
			if len(facts) == 0 {
				return nil, fmt.Errorf("%w: analysis returned no key/value pairs", ErrExtractionFailed)
			}
			return facts, nil
		}

		resp.Body.Close()

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("analysis API error: %d", resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("analysis API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, ErrExtractionFailed
}
