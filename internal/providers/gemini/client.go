// Package gemini wraps the Gemini SDK for the single call this service
// makes: multimodal image-to-image generation pinned to a 2:3 portrait
// output.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"server/internal/domain"
)

// Options configures the generation client.
type Options struct {
	APIKey    string
	Model     string
	ImageSize string
}

// Client issues generateContent calls with the response modality restricted
// to image output. One call per request; failures are never retried here.
type Client struct {
	client    *genai.Client
	model     string
	imageSize string
}

// NewClient validates the options and dials the API.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("gemini: model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: opts.APIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	imageSize := opts.ImageSize
	if imageSize == "" {
		imageSize = "1K"
	}

	return &Client{client: client, model: opts.Model, imageSize: imageSize}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// GenerateImage sends the assembled content parts and extracts the generated
// image. A response without any image part maps to GenerationFailedError
// with the user-facing "no image" message.
func (c *Client) GenerateImage(ctx context.Context, parts []*genai.Part) (domain.ImageAsset, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: "2:3",
			ImageSize:   c.imageSize,
		},
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return domain.ImageAsset{}, &domain.GenerationFailedError{Err: err}
	}

	data, mimeType, ok := ExtractImage(resp)
	if !ok {
		return domain.ImageAsset{}, &domain.GenerationFailedError{Msg: "No image was returned by the AI model."}
	}

	return domain.ImageAsset{Bytes: data, MIMEType: mimeType, Kind: domain.KindGeneratedOutput}, nil
}

// ExtractImage scans the response parts in order and returns the first one
// whose media type has the image/ prefix. It never falls back to a non-image
// part.
func ExtractImage(resp *genai.GenerateContentResponse) ([]byte, string, bool) {
	if resp == nil {
		return nil, "", false
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mimeType := strings.TrimSpace(part.InlineData.MIMEType)
			if mimeType == "" {
				mimeType = domain.MIMEPNG
			}
			if !strings.HasPrefix(mimeType, "image/") {
				continue
			}
			return part.InlineData.Data, mimeType, true
		}
	}
	return nil, "", false
}
