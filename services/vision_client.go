// challenge-service/services/vision_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// VisionClient is the default ImageClassifier: it calls the moderation API's
// safe-search endpoint with the stored media URL and returns the raw
// per-category likelihoods.
type VisionClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewVisionClient(baseURL, token string) *VisionClient {
	return &VisionClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *VisionClient) Classify(ctx context.Context, imageURL string) (SafeSearchResult, error) {
	url := fmt.Sprintf("%s/v1/images:safeSearch", c.BaseURL)

	reqBody := map[string]interface{}{
		"image_url": imageURL,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return SafeSearchResult{}, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return SafeSearchResult{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("Moderation API safeSearch returned %d: %s", resp.StatusCode, string(body))
		return SafeSearchResult{}, fmt.Errorf("safe search failed: %d", resp.StatusCode)
	}

	var out SafeSearchResult
	if err := json.Unmarshal(body, &out); err != nil {
		return SafeSearchResult{}, err
	}

	return out, nil
}
