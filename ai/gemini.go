package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"clausewise-backend/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	embeddingAPI   = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"
	generationAPI  = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"
	maxRetries     = 3
	initialBackoff = time.Second

	embeddingDimensions = 768
)

// GeminiClient implements Client against the Gemini API. Generation and
// embedding requests go through the REST endpoints directly; the genai
// client is kept for connection validation at startup.
type GeminiClient struct {
	client     *genai.Client
	apiKey     string
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini-backed Client
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Close releases the underlying genai client
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

const parseQueryPrompt = `You are an insurance claims analyst. Extract structured fields from this coverage question.

Question: %s

Return a valid JSON object with only the fields that are present in the question:
{"age": <integer>, "gender": "male"|"female", "procedure": "<procedure name>", "location": "<city>", "policy_duration": <integer>, "policy_duration_unit": "days"|"months"|"years", "pre_existing_conditions": ["<condition>"]}`

// ParseQuery extracts structured fields from a free-text query via Gemini
func (g *GeminiClient) ParseQuery(ctx context.Context, text string) (models.StructuredQuery, error) {
	var query models.StructuredQuery

	reply, err := g.callGenerationAPI(ctx, fmt.Sprintf(parseQueryPrompt, text), 0.1)
	if err != nil {
		return query, err
	}

	if err := json.Unmarshal([]byte(stripFences(reply)), &query); err != nil {
		return models.StructuredQuery{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	return query, nil
}

const findClausesPrompt = `You are an insurance policy analyst. Given a coverage question and numbered policy clauses, identify which clauses are relevant to deciding the question.

Question: %s
Structured fields: %s

Clauses:
%s

Return a valid JSON object: {"indices": [<0-based indices of relevant clauses, at most 10>]}`

// FindRelevantClauses asks Gemini to rank the clause corpus for the query
func (g *GeminiClient) FindRelevantClauses(ctx context.Context, text string, structured models.StructuredQuery, allClauses []string) ([]string, error) {
	structuredJSON, err := json.Marshal(structured)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal structured query: %w", err)
	}

	var numbered strings.Builder
	for i, clause := range allClauses {
		fmt.Fprintf(&numbered, "[%d] %s\n", i, clause)
	}

	prompt := fmt.Sprintf(findClausesPrompt, text, structuredJSON, numbered.String())
	reply, err := g.callGenerationAPI(ctx, prompt, 0.1)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Indices []int `json:"indices"`
	}
	if err := json.Unmarshal([]byte(stripFences(reply)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	var clauses []string
	for _, index := range parsed.Indices {
		if index < 0 || index >= len(allClauses) {
			continue
		}
		clauses = append(clauses, allClauses[index])
	}
	return clauses, nil
}

const makeDecisionPrompt = `You are an insurance claims adjudicator. Decide whether this claim is covered.

Question: %s
Structured fields: %s

Relevant policy clauses:
%s

Return a valid JSON object:
{"decision": "approved"|"rejected"|"pending", "amount": <number>, "deductible": <number>, "confidence_score": <0.0-1.0>, "justification": [{"criterion": "<id>", "status": "met"|"not_met"|"unclear", "source_clause": "<clause text>", "description": "<explanation>"}]}`

// MakeDecision asks Gemini to synthesize a coverage decision
func (g *GeminiClient) MakeDecision(ctx context.Context, text string, structured models.StructuredQuery, clauses []string) (models.ProcessingResult, error) {
	start := time.Now()

	structuredJSON, err := json.Marshal(structured)
	if err != nil {
		return models.ProcessingResult{}, fmt.Errorf("failed to marshal structured query: %w", err)
	}

	prompt := fmt.Sprintf(makeDecisionPrompt, text, structuredJSON, strings.Join(clauses, "\n"))
	reply, err := g.callGenerationAPI(ctx, prompt, 0.2)
	if err != nil {
		return models.ProcessingResult{}, err
	}

	var result models.ProcessingResult
	if err := json.Unmarshal([]byte(stripFences(reply)), &result); err != nil {
		return models.ProcessingResult{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	switch result.Decision {
	case models.DecisionApproved, models.DecisionRejected, models.DecisionPending:
	default:
		return models.ProcessingResult{}, fmt.Errorf("%w: unknown decision %q", ErrMalformedReply, result.Decision)
	}

	if result.Justification == nil {
		result.Justification = make(models.Justifications, 0)
	}
	result.CoverageDetails = models.CoverageDetails{
		Age:       structured.Age,
		Gender:    structured.Gender,
		Procedure: structured.Procedure,
		Location:  structured.Location,
	}
	if structured.PolicyDuration != nil {
		months := *structured.PolicyDuration
		if structured.PolicyDurationUnit != nil {
			switch *structured.PolicyDurationUnit {
			case models.UnitYears:
				months *= 12
			case models.UnitDays:
				months /= 30
			}
		}
		result.CoverageDetails.PolicyDurationMonths = &months
	}
	result.ProcessingTimeMs = time.Since(start).Milliseconds()

	return result, nil
}

// EmbeddingRequest represents an embedding API request
type EmbeddingRequest struct {
	Model                string       `json:"model"`
	Content              ContentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

// ContentInput represents content for embedding
type ContentInput struct {
	Parts []PartInput `json:"parts"`
}

// PartInput represents a part of content
type PartInput struct {
	Text string `json:"text"`
}

// EmbeddingResponse represents an embedding API response
type EmbeddingResponse struct {
	Embedding EmbeddingData `json:"embedding"`
}

// EmbeddingData contains the embedding values
type EmbeddingData struct {
	Values []float64 `json:"values"`
}

// GenerateEmbedding returns a normalized 768-dimension embedding for text
func (g *GeminiClient) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	reqBody := EmbeddingRequest{
		Model: "models/gemini-embedding-001",
		Content: ContentInput{
			Parts: []PartInput{{Text: text}},
		},
		TaskType:             "RETRIEVAL_DOCUMENT",
		OutputDimensionality: embeddingDimensions,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", embeddingAPI, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", g.apiKey)

		resp, err := g.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp EmbeddingResponse
			if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
				resp.Body.Close()
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", err)
				}
				continue
			}
			resp.Body.Close()

			return normalize(apiResp.Embedding.Values), nil
		}

		resp.Body.Close()

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("API error: %d", resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, ErrEmbeddingFailed
}

func normalize(embedding []float64) []float64 {
	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range embedding {
			embedding[i] /= norm
		}
	}
	return embedding
}

// callGenerationAPI calls the Gemini generation API directly via HTTP
func (g *GeminiClient) callGenerationAPI(ctx context.Context, prompt string, temperature float64) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", generationAPI, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Printf("Gemini API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))
		return "", fmt.Errorf("API error: %d - %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("API error: %s (code: %d)", apiResp.Error.Message, apiResp.Error.Code)
	}

	if apiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("API blocked prompt: %s", apiResp.PromptFeedback.BlockReason)
	}

	if len(apiResp.Candidates) == 0 {
		return "", fmt.Errorf("API returned no candidates")
	}

	var responseText strings.Builder
	for _, candidate := range apiResp.Candidates {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			log.Printf("Warning: candidate finished with reason: %s", candidate.FinishReason)
		}
		for _, part := range candidate.Content.Parts {
			responseText.WriteString(part.Text)
		}
	}

	result := responseText.String()
	if result == "" {
		return "", fmt.Errorf("API returned empty content")
	}

	return result, nil
}

// stripFences removes a surrounding markdown code fence from a model reply
func stripFences(reply string) string {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "```") {
		reply = strings.TrimPrefix(reply, "```json")
		reply = strings.TrimPrefix(reply, "```")
		reply = strings.TrimSuffix(strings.TrimSpace(reply), "```")
	}
	return strings.TrimSpace(reply)
}
