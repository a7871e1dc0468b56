package gemini

import (
	"testing"

	"google.golang.org/genai"
)

func respWithParts(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}},
		},
	}
}

func TestExtractImage(t *testing.T) {
	imageBytes := []byte{0x89, 0x50, 0x4E, 0x47}

	tests := []struct {
		name     string
		resp     *genai.GenerateContentResponse
		wantOK   bool
		wantMIME string
	}{
		{
			name:   "nil response",
			resp:   nil,
			wantOK: false,
		},
		{
			name:   "no candidates",
			resp:   &genai.GenerateContentResponse{},
			wantOK: false,
		},
		{
			name:   "text only",
			resp:   respWithParts(genai.NewPartFromText("I cannot do that")),
			wantOK: false,
		},
		{
			name: "image part",
			resp: respWithParts(
				&genai.Part{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: imageBytes}},
			),
			wantOK:   true,
			wantMIME: "image/jpeg",
		},
		{
			name: "text before image",
			resp: respWithParts(
				genai.NewPartFromText("here you go"),
				&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: imageBytes}},
			),
			wantOK:   true,
			wantMIME: "image/png",
		},
		{
			name: "missing media type defaults to png",
			resp: respWithParts(
				&genai.Part{InlineData: &genai.Blob{Data: imageBytes}},
			),
			wantOK:   true,
			wantMIME: "image/png",
		},
		{
			name: "non-image inline data skipped",
			resp: respWithParts(
				&genai.Part{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: imageBytes}},
			),
			wantOK: false,
		},
		{
			name: "empty inline data skipped",
			resp: respWithParts(
				&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png"}},
			),
			wantOK: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, mimeType, ok := ExtractImage(tc.resp)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if mimeType != tc.wantMIME {
				t.Fatalf("mime = %q, want %q", mimeType, tc.wantMIME)
			}
			if len(data) == 0 {
				t.Fatal("expected image bytes")
			}
		})
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(t.Context(), Options{Model: "some-model"}); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := NewClient(t.Context(), Options{APIKey: "key"}); err == nil {
		t.Fatal("expected error for missing model")
	}
}
