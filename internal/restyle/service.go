// Package restyle orchestrates a single re-upholstery generation request:
// validate, normalize, persist the original and call the model in parallel,
// extract the result, persist it.
package restyle

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"server/internal/domain"
	"server/internal/imagegen"
	"server/internal/imageproc"
	"server/internal/infra"
	"server/internal/storage"
)

// Size limits enforced before any processing happens.
const (
	MaxMainImageBytes      = 10 * 1024 * 1024
	MaxReferenceImageBytes = 5 * 1024 * 1024
)

// User-facing validation messages.
const (
	MsgMissingPhoto     = "Please upload a furniture photo first."
	MsgBadImageType     = "Main image must be JPEG, PNG, or WebP."
	MsgImageTooLarge    = "Main image must be 10 MB or less."
	MsgMissingFabric    = "Please choose one of the preset fabric swatches."
	MsgUnknownFabric    = "Selected swatch was not found."
	MsgBadReferenceType = "Reference image must be JPEG, PNG, or WebP."
	MsgReferenceTooBig  = "Reference image must be 5 MB or less."
)

// Generator is the external model boundary.
type Generator interface {
	GenerateImage(ctx context.Context, parts []*genai.Part) (domain.ImageAsset, error)
}

// Store is the slice of the storage adapter the orchestrator needs.
type Store interface {
	Backend() storage.Backend
	SaveOriginal(ctx context.Context, data []byte, extension string) (domain.StoredArtifact, error)
	SaveGenerated(ctx context.Context, data []byte, extension string) (domain.StoredArtifact, error)
}

// SwatchReader resolves catalogue swatch paths to image bytes.
type SwatchReader interface {
	ReadSwatch(relPath string) (domain.ImageAsset, error)
}

// Service wires the pipeline dependencies for the per-request flow. It holds
// no mutable state; every request is independent.
type Service struct {
	store     Store
	swatches  SwatchReader
	generator Generator
	timeout   time.Duration
	logger    infra.Logger
}

// NewService builds the orchestrator. timeout bounds the external model
// call; zero means 60 seconds.
func NewService(store Store, swatches SwatchReader, generator Generator, timeout time.Duration, logger infra.Logger) *Service {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Service{
		store:     store,
		swatches:  swatches,
		generator: generator,
		timeout:   timeout,
		logger:    logger,
	}
}

// Request describes one generation attempt.
type Request struct {
	// Furniture is the main photo. Required.
	Furniture *domain.ImageAsset
	// FabricID selects a preset swatch; may be empty when Reference is set.
	FabricID string
	// Reference optionally overrides the preset swatch image.
	Reference *domain.ImageAsset
	// OriginalURL, when set, marks an already-persisted original: the
	// save-original branch is skipped and the URL is echoed back.
	OriginalURL string
}

// Result carries the two artifact URLs of a fully successful run. There is
// no partial success: on any error both URLs are absent.
type Result struct {
	OriginalURL  string
	GeneratedURL string
	Elapsed      time.Duration
}

// Generate runs the full pipeline. The save-original write and the model
// call run concurrently once normalization is done; a failure in either
// aborts the request before the generated image is persisted.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	fabric, err := s.validate(req)
	if err != nil {
		return Result{}, err
	}

	tNorm := time.Now()
	normalized, err := imageproc.Normalize(req.Furniture.Bytes, req.Furniture.MIMEType)
	if err != nil {
		return Result{}, err
	}
	normalizeMs := time.Since(tNorm).Milliseconds()

	reference := req.Reference
	if reference == nil && fabric.ID != "" {
		swatch, err := s.swatches.ReadSwatch(fabric.SwatchPath)
		if err != nil {
			return Result{}, &domain.InternalError{Err: err}
		}
		reference = &swatch
	}

	parts := imagegen.BuildParts(imagegen.PromptInput{
		Fabric:    fabric,
		Main:      normalized.Asset(),
		Reference: reference,
	})

	ext := imageproc.ExtensionFor(normalized.MIMEType)

	var (
		originalURL = req.OriginalURL
		generated   domain.ImageAsset
		uploadMs    int64
		generateMs  int64
	)

	group, groupCtx := errgroup.WithContext(ctx)
	if originalURL == "" {
		group.Go(func() error {
			t := time.Now()
			artifact, err := s.store.SaveOriginal(groupCtx, normalized.Bytes, ext)
			uploadMs = time.Since(t).Milliseconds()
			if err != nil {
				return err
			}
			originalURL = artifact.URL
			return nil
		})
	}
	group.Go(func() error {
		t := time.Now()
		callCtx, cancel := context.WithTimeout(groupCtx, s.timeout)
		defer cancel()
		asset, err := s.generator.GenerateImage(callCtx, parts)
		generateMs = time.Since(t).Milliseconds()
		if err != nil {
			return err
		}
		generated = asset
		return nil
	})
	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	generatedArtifact, err := s.store.SaveGenerated(ctx, generated.Bytes, imageproc.ExtensionFor(generated.MIMEType))
	if err != nil {
		return Result{}, err
	}

	elapsed := time.Since(start)
	s.logger.Info().
		Str("fabric_id", fabric.ID).
		Str("backend", string(s.store.Backend())).
		Int64("normalize_ms", normalizeMs).
		Int64("upload_ms", uploadMs).
		Int64("generate_ms", generateMs).
		Int64("total_ms", elapsed.Milliseconds()).
		Msg("generation completed")

	return Result{
		OriginalURL:  originalURL,
		GeneratedURL: generatedArtifact.URL,
		Elapsed:      elapsed,
	}, nil
}

// validate applies the full gate before any processing: main image present
// and within policy, and either a known fabric or a custom reference that
// independently satisfies its own policy.
func (s *Service) validate(req Request) (domain.FabricOption, error) {
	if req.Furniture == nil || len(req.Furniture.Bytes) == 0 {
		return domain.FabricOption{}, domain.BadRequest(MsgMissingPhoto)
	}
	if !domain.AllowedImageMIME(req.Furniture.MIMEType) {
		return domain.FabricOption{}, domain.BadRequest(MsgBadImageType)
	}
	if len(req.Furniture.Bytes) > MaxMainImageBytes {
		return domain.FabricOption{}, domain.BadRequest(MsgImageTooLarge)
	}
	if req.FabricID == "" && req.Reference == nil {
		return domain.FabricOption{}, domain.BadRequest(MsgMissingFabric)
	}
	if req.Reference != nil {
		if !domain.AllowedImageMIME(req.Reference.MIMEType) {
			return domain.FabricOption{}, domain.BadRequest(MsgBadReferenceType)
		}
		if len(req.Reference.Bytes) > MaxReferenceImageBytes {
			return domain.FabricOption{}, domain.BadRequest(MsgReferenceTooBig)
		}
	}
	if req.FabricID == "" {
		return domain.FabricOption{}, nil
	}
	fabric, ok := domain.FabricByID(req.FabricID)
	if !ok {
		return domain.FabricOption{}, domain.BadRequest(MsgUnknownFabric)
	}
	return fabric, nil
}
