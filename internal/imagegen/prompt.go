// Package imagegen assembles the multimodal content sequence sent to the
// generation model: one instruction text part, the normalized furniture
// photo, and optionally a fabric texture reference.
package imagegen

import (
	"fmt"

	"google.golang.org/genai"

	"server/internal/domain"
)

// referenceClause is appended to the instruction if and only if a reference
// image part is attached. The clause and the part travel together; one never
// appears without the other.
const referenceClause = "\n\nUse the second image as the exact style / texture reference for the new upholstery fabric."

// PromptInput captures everything the assembler needs. Fabric may be empty
// when the caller supplied a custom reference image instead of a preset.
type PromptInput struct {
	Fabric    domain.FabricOption
	Main      domain.ImageAsset
	Reference *domain.ImageAsset
}

// BuildInstruction renders the instruction text for the given fabric. Pure
// and deterministic; snapshot-tested.
func BuildInstruction(in PromptInput) string {
	fabricLine := fmt.Sprintf("in the fabric %q (approximate color %s)", in.Fabric.Name, in.Fabric.Hex)
	textureLine := in.Fabric.PromptHint
	if in.Fabric.ID == "" {
		fabricLine = "in the custom fabric shown in the reference image"
		textureLine = "match the reference image exactly"
	}

	text := fmt.Sprintf(`You are an expert furniture upholstery visualizer. Transform the provided furniture photo to show how it would look re-upholstered %s.

Key requirements:
- Keep the exact same room layout, dimensions, and perspective as the original photo
- Replace ONLY the upholstery / cover material on the chair or sofa
- Do NOT change the furniture shape, legs, frame, stitching lines, or structure
- Texture guidance: %s
- Maintain realistic lighting and shadows based on the original photo
- Keep floors, walls, ceiling, and all non-furniture objects unchanged
- The result should look like a professional interior-design visualization
- Make it photorealistic

Generate the transformed furniture image.`, fabricLine, textureLine)

	if in.Reference != nil {
		text += referenceClause
	}
	return text
}

// BuildParts produces the ordered content sequence: instruction text, main
// image, then the reference image when one exists. The reference clause is
// added atomically with the reference part.
func BuildParts(in PromptInput) []*genai.Part {
	parts := []*genai.Part{
		genai.NewPartFromText(BuildInstruction(in)),
		{InlineData: &genai.Blob{MIMEType: in.Main.MIMEType, Data: in.Main.Bytes}},
	}
	if in.Reference != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: in.Reference.MIMEType, Data: in.Reference.Bytes},
		})
	}
	return parts
}
