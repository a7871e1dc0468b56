package restyle

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"server/internal/domain"
	"server/internal/storage"
)

type fakeStore struct {
	mu              sync.Mutex
	saveOriginalErr error
	originalCalls   int
	generatedCalls  int
}

func (s *fakeStore) Backend() storage.Backend { return storage.BackendLocal }

func (s *fakeStore) SaveOriginal(ctx context.Context, data []byte, extension string) (domain.StoredArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.originalCalls++
	if s.saveOriginalErr != nil {
		return domain.StoredArtifact{}, s.saveOriginalErr
	}
	return domain.StoredArtifact{
		URL:     "/uploads/upload-1." + extension,
		Backend: string(storage.BackendLocal),
	}, nil
}

func (s *fakeStore) SaveGenerated(ctx context.Context, data []byte, extension string) (domain.StoredArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generatedCalls++
	return domain.StoredArtifact{
		URL:     "/generated/generated-1." + extension,
		Backend: string(storage.BackendLocal),
	}, nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	err   error
	parts []*genai.Part
}

func (g *fakeGenerator) GenerateImage(ctx context.Context, parts []*genai.Part) (domain.ImageAsset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.parts = parts
	if g.err != nil {
		return domain.ImageAsset{}, g.err
	}
	return domain.ImageAsset{
		Bytes:    []byte{0x89, 0x50},
		MIMEType: domain.MIMEPNG,
		Kind:     domain.KindGeneratedOutput,
	}, nil
}

type fakeSwatches struct {
	calls int
}

func (s *fakeSwatches) ReadSwatch(relPath string) (domain.ImageAsset, error) {
	s.calls++
	return domain.ImageAsset{
		Bytes:    []byte("swatch"),
		MIMEType: domain.MIMEJPEG,
		Kind:     domain.KindReferenceSwatch,
	}, nil
}

func furnitureJPEG(t *testing.T) *domain.ImageAsset {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 300, 200)), nil); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return &domain.ImageAsset{
		Bytes:    buf.Bytes(),
		MIMEType: domain.MIMEJPEG,
		Kind:     domain.KindUploadedOriginal,
	}
}

func newTestService(store *fakeStore, generator *fakeGenerator, swatches *fakeSwatches) *Service {
	return NewService(store, swatches, generator, 0, zerolog.Nop())
}

func TestGenerateSuccess(t *testing.T) {
	store := &fakeStore{}
	generator := &fakeGenerator{}
	swatches := &fakeSwatches{}
	svc := newTestService(store, generator, swatches)

	result, err := svc.Generate(t.Context(), Request{
		Furniture: furnitureJPEG(t),
		FabricID:  "barry-24",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if result.OriginalURL != "/uploads/upload-1.jpg" {
		t.Fatalf("original url = %q", result.OriginalURL)
	}
	if result.GeneratedURL != "/generated/generated-1.png" {
		t.Fatalf("generated url = %q", result.GeneratedURL)
	}
	if store.originalCalls != 1 || store.generatedCalls != 1 {
		t.Fatalf("store calls = %d/%d, want 1/1", store.originalCalls, store.generatedCalls)
	}
	if swatches.calls != 1 {
		t.Fatalf("swatch reads = %d, want 1", swatches.calls)
	}
	// Instruction, main photo, swatch reference.
	if len(generator.parts) != 3 {
		t.Fatalf("generator received %d parts, want 3", len(generator.parts))
	}
}

func TestGenerateFailureSavesNothing(t *testing.T) {
	store := &fakeStore{}
	generator := &fakeGenerator{err: &domain.GenerationFailedError{Msg: "No image was returned by the AI model."}}
	svc := newTestService(store, generator, &fakeSwatches{})

	_, err := svc.Generate(t.Context(), Request{
		Furniture: furnitureJPEG(t),
		FabricID:  "barry-24",
	})
	if err == nil {
		t.Fatal("expected generation error")
	}
	var genErr *domain.GenerationFailedError
	if !errors.As(err, &genErr) {
		t.Fatalf("error type = %T, want *domain.GenerationFailedError", err)
	}
	if store.generatedCalls != 0 {
		t.Fatal("generated artifact persisted despite failed generation")
	}
}

func TestGenerateAbortsWhenOriginalSaveFails(t *testing.T) {
	store := &fakeStore{saveOriginalErr: &domain.StorageWriteError{
		Backend: "local-filesystem",
		Key:     "uploads/upload-1.jpg",
		Err:     errors.New("disk full"),
	}}
	svc := newTestService(store, &fakeGenerator{}, &fakeSwatches{})

	_, err := svc.Generate(t.Context(), Request{
		Furniture: furnitureJPEG(t),
		FabricID:  "barry-24",
	})
	if err == nil {
		t.Fatal("expected storage error")
	}
	var writeErr *domain.StorageWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("error type = %T, want *domain.StorageWriteError", err)
	}
	if store.generatedCalls != 0 {
		t.Fatal("generated artifact persisted despite failed original save")
	}
}

func TestGenerateSkipsSaveForKnownOriginal(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeGenerator{}, &fakeSwatches{})

	result, err := svc.Generate(t.Context(), Request{
		Furniture:   furnitureJPEG(t),
		FabricID:    "barry-24",
		OriginalURL: "/uploads/upload-99.jpg",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if store.originalCalls != 0 {
		t.Fatal("original re-saved even though its URL was supplied")
	}
	if result.OriginalURL != "/uploads/upload-99.jpg" {
		t.Fatalf("original url = %q, want the supplied one", result.OriginalURL)
	}
}

func TestGenerateCustomReferenceSkipsCatalogue(t *testing.T) {
	store := &fakeStore{}
	generator := &fakeGenerator{}
	swatches := &fakeSwatches{}
	svc := newTestService(store, generator, swatches)

	_, err := svc.Generate(t.Context(), Request{
		Furniture: furnitureJPEG(t),
		Reference: &domain.ImageAsset{
			Bytes:    []byte("custom fabric"),
			MIMEType: domain.MIMEPNG,
			Kind:     domain.KindReferenceSwatch,
		},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if swatches.calls != 0 {
		t.Fatal("catalogue consulted despite custom reference")
	}
	if len(generator.parts) != 3 {
		t.Fatalf("generator received %d parts, want 3", len(generator.parts))
	}
}

func TestGenerateValidation(t *testing.T) {
	furniture := furnitureJPEG(t)
	oversized := &domain.ImageAsset{
		Bytes:    make([]byte, MaxMainImageBytes+1),
		MIMEType: domain.MIMEJPEG,
	}
	badType := &domain.ImageAsset{Bytes: []byte("gif"), MIMEType: "image/gif"}
	bigReference := &domain.ImageAsset{
		Bytes:    make([]byte, MaxReferenceImageBytes+1),
		MIMEType: domain.MIMEJPEG,
	}

	tests := []struct {
		name    string
		req     Request
		wantMsg string
	}{
		{name: "missing photo", req: Request{FabricID: "barry-24"}, wantMsg: MsgMissingPhoto},
		{name: "empty photo", req: Request{Furniture: &domain.ImageAsset{MIMEType: domain.MIMEJPEG}, FabricID: "barry-24"}, wantMsg: MsgMissingPhoto},
		{name: "bad photo type", req: Request{Furniture: badType, FabricID: "barry-24"}, wantMsg: MsgBadImageType},
		{name: "oversized photo", req: Request{Furniture: oversized, FabricID: "barry-24"}, wantMsg: MsgImageTooLarge},
		{name: "no fabric no reference", req: Request{Furniture: furniture}, wantMsg: MsgMissingFabric},
		{name: "unknown fabric", req: Request{Furniture: furniture, FabricID: "tartan-99"}, wantMsg: MsgUnknownFabric},
		{
			name: "bad reference type",
			req: Request{
				Furniture: furniture,
				FabricID:  "barry-24",
				Reference: &domain.ImageAsset{Bytes: []byte("x"), MIMEType: "text/plain"},
			},
			wantMsg: MsgBadReferenceType,
		},
		{
			name:    "oversized reference",
			req:     Request{Furniture: furniture, FabricID: "barry-24", Reference: bigReference},
			wantMsg: MsgReferenceTooBig,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			svc := newTestService(store, &fakeGenerator{}, &fakeSwatches{})

			_, err := svc.Generate(t.Context(), tc.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var badReq *domain.BadRequestError
			if !errors.As(err, &badReq) {
				t.Fatalf("error type = %T, want *domain.BadRequestError", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("error = %q, want %q", err.Error(), tc.wantMsg)
			}
			if store.originalCalls != 0 || store.generatedCalls != 0 {
				t.Fatal("store touched before validation passed")
			}
		})
	}
}
