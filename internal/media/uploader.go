// Package media uploads image files to a remote media host.  Failures
// degrade to an empty URL instead of an error so registration flow decides
// for itself whether a missing upload is fatal.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"
)

// Uploader posts multipart files to the configured media host endpoint.
// A zero BaseURL disables uploads entirely.
type Uploader struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewUploader(baseURL, apiKey string) *Uploader {
	return &Uploader{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Upload sends one file to the media host and returns its hosted URL.  Any
// failure is logged and an empty string returned; the caller treats that as
// "no image".  The host is expected to answer 2xx with a JSON body carrying
// a "url" field.
func (u *Uploader) Upload(ctx context.Context, filename string, r io.Reader) string {
	if u.BaseURL == "" {
		return ""
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		log.Printf("media: build form failed: %v", err)
		return ""
	}
	if _, err := io.Copy(part, r); err != nil {
		log.Printf("media: read file failed: %v", err)
		return ""
	}
	if err := mw.Close(); err != nil {
		log.Printf("media: close form failed: %v", err)
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.BaseURL, &body)
	if err != nil {
		log.Printf("media: build request failed: %v", err)
		return ""
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if u.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.APIKey)
	}

	resp, err := u.Client.Do(req)
	if err != nil {
		log.Printf("media: upload failed: %v", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("media: upload rejected: status %d", resp.StatusCode)
		return ""
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Printf("media: decode response failed: %v", err)
		return ""
	}
	return out.URL
}
