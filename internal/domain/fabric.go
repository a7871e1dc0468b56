package domain

// FabricOption is a catalogue entry for a preset upholstery fabric. The
// catalogue is fixed at build time; swatch paths point into the read-only
// public/swatches tree.
type FabricOption struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Hex        string `json:"hex"`
	SwatchPath string `json:"swatchPath"`
	PromptHint string `json:"promptHint"`
}

// FabricOptions lists every selectable fabric in display order.
var FabricOptions = []FabricOption{
	{
		ID:         "anholt-02",
		Name:       "Anholt 02",
		Hex:        "#D8E2E7",
		SwatchPath: "/swatches/Anholt_02.jpg",
		PromptHint: "Close-up macro of a tightly woven basket-weave upholstery textile. Base color is cool off-white/light grey with a slightly blue cast. Irregular black/charcoal slub threads form subtle vertical + horizontal streaks, creating a lightly speckled grid. Texture is crisp and structured (not fuzzy), with visible woven blocks and small raised knots. Even studio lighting, sharp detail, no pattern besides the weave.",
	},
	{
		ID:         "barry-24",
		Name:       "Barry 24",
		Hex:        "#7E464E",
		SwatchPath: "/swatches/Barry_24.jpg",
		PromptHint: "Close-up macro of a coarse, nubby woven upholstery fabric in deep burgundy/wine (red-brown) with subtle tonal variation. Surface is pebbly and tactile with small loops and irregular yarn thickness. No stripes or geometric motif—just organic texture and depth from the weave. Slight sheen is minimal; overall matte, warm, and heavy-duty. Even lighting, high sharpness, visible fibers.",
	},
	{
		ID:         "ferby-10",
		Name:       "Ferby 10",
		Hex:        "#3D3D44",
		SwatchPath: "/swatches/Ferby_10.jpg",
		PromptHint: "Close-up macro of a dark charcoal/graphite striped upholstery textile. Repeating vertical bands with alternating textures: darker fuzzy ribs and narrower dotted pinstripes in muted blue-grey. Strong linear direction, tight spacing, and a structured look (like a modern contract fabric). Fibers are short and slightly fuzzy; contrast is subtle but clearly striped. Neutral studio lighting, very sharp detail.",
	},
	{
		ID:         "ferby-22",
		Name:       "Ferby 22",
		Hex:        "#5F3333",
		SwatchPath: "/swatches/Ferby_22.jpg",
		PromptHint: "Close-up macro of a ribbed corduroy-style upholstery fabric in brick red/oxblood. Clear vertical ribs/wales running top-to-bottom with a soft pile; valleys between ribs are slightly darker, giving depth. Texture looks plush and tactile with visible individual fibers along the ribs. Overall matte with mild directional shading from the nap. Even studio lighting, crisp macro focus.",
	},
	{
		ID:         "moss-2007",
		Name:       "MOSS 2007",
		Hex:        "#35242C",
		SwatchPath: "/swatches/MOSS_2007.jpg",
		PromptHint: "Close-up macro of plush velvet/velour fabric in very dark aubergine (near-black wine). Smooth dense pile with subtle directional nap creating soft tonal waves; no visible weave grid, just velvety surface. Tiny lint/fiber flecks may be visible, but overall luxurious and uniform. Low-to-medium sheen that catches light softly. Studio lighting, high detail, rich dark color.",
	},
	{
		ID:         "skt-thomas-25",
		Name:       "Skt. Thomas 25",
		Hex:        "#B9B9B2",
		SwatchPath: "/swatches/Skt.-Thomas_25.jpg",
		PromptHint: "Close-up macro of a looped bouclé upholstery fabric in warm oatmeal/greige. Dense small loops and knots create a bumpy, cozy texture with subtle tonal flecks (beige + light grey). No stripes; the interest comes from the looped yarn structure and irregular surface. Looks soft, thick, and comfortable with a matte finish. Even studio lighting, sharp texture detail.",
	},
}

var fabricIndex = func() map[string]int {
	idx := make(map[string]int, len(FabricOptions))
	for i, fabric := range FabricOptions {
		idx[fabric.ID] = i
	}
	return idx
}()

// FabricByID looks up a catalogue entry by its id.
func FabricByID(id string) (FabricOption, bool) {
	i, ok := fabricIndex[id]
	if !ok {
		return FabricOption{}, false
	}
	return FabricOptions[i], true
}
