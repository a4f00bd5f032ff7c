package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-usman198/PM-Project/internal/config"
	"github.com/m-usman198/PM-Project/internal/models"
)

// maxErrorBody bounds how much of a failed response is read for its message
const maxErrorBody = 64 << 10

// RemoteError is a non-2xx reply from the remote analysis endpoint
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("analysis endpoint returned status %d", e.StatusCode)
}

// AnalysisRepository handles remote analysis endpoint interactions
type AnalysisRepository struct {
	config *config.RemoteConfig
	client *http.Client
}

// NewAnalysisRepository creates a new remote analysis repository
func NewAnalysisRepository(remoteConfig *config.RemoteConfig) *AnalysisRepository {
	return &AnalysisRepository{
		config: remoteConfig,
		client: &http.Client{
			Timeout: time.Duration(remoteConfig.TimeoutSeconds) * time.Second,
		},
	}
}

// Analyze posts the project to the remote endpoint and decodes its assessment
func (r *AnalysisRepository) Analyze(ctx context.Context, project models.ProjectData) (models.AnalysisResult, error) {
	jsonData, err := json.Marshal(project)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to marshal project: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.config.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.config.APIToken)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return models.AnalysisResult{}, &RemoteError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var result models.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return result, nil
}

// errorMessage extracts {"error": "..."} from a failure body
func errorMessage(body []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return ""
	}

	var msg string
	if err := json.Unmarshal(payload.Error, &msg); err == nil {
		return strings.TrimSpace(msg)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}
