package vectorize

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/hazyhaar/stylevec/normalize"
	"github.com/hazyhaar/stylevec/tokens"
)

// Layout-derived scores. With a raw layout snapshot they are computed from
// element geometry; without one they fall back to the report's precomputed
// layoutFeatures block, so a tokens+report-only run still fills every
// dimension.
//
// All scores except MedianArea are already in [0,1]. MedianArea stays in
// px² and goes through the bounds table like any other raw value.
type layoutScores struct {
	Density        float64
	Whitespace     float64
	PaddingConsist float64
	ImageTextBal   float64
	Grouping       float64
	Complexity     float64
	BorderHeavy    float64
	ShadowDepth    float64
	MedianArea     float64
	GridRegularity float64
	VerticalRhythm float64
}

const (
	// densityMidpoint is the nodes-per-megapixel count that maps to a 0.5
	// density score under log scaling.
	densityMidpoint = 250

	// overlapSampleA and overlapSampleB bound the pairwise overlap scan so
	// grouping strength stays O(A*B) on pathological DOMs.
	overlapSampleA = 100
	overlapSampleB = 20

	// yBandHeight is the horizontal band granularity (px) used for the
	// composition and rhythm features.
	yBandHeight = 120

	// whitespaceGrid is the occupancy-grid resolution per viewport axis.
	whitespaceGrid = 24
)

func layoutFromSnapshot(snap *tokens.LayoutSnapshot) layoutScores {
	nodes := visibleNodes(snap.Nodes)
	vpArea := snap.Viewport.Area()

	return layoutScores{
		Density:        densityScore(len(nodes), vpArea),
		Whitespace:     whitespaceRatio(nodes, snap.Viewport),
		PaddingConsist: paddingConsistency(nodes),
		ImageTextBal:   imageTextBalance(nodes),
		Grouping:       groupingStrength(nodes),
		Complexity:     compositionalComplexity(nodes),
		BorderHeavy:    borderHeaviness(nodes),
		ShadowDepth:    shadowDepth(nodes),
		MedianArea:     medianArea(nodes),
		GridRegularity: gridRegularity(nodes),
		VerticalRhythm: verticalRhythm(nodes),
	}
}

// layoutFromReport maps the report's precomputed layout block onto the same
// score set. ElementScale in the report is already normalized, so it is
// denormalized through nothing: the builder treats it as a final score and
// bypasses the bounds table for that dimension.
func layoutFromReport(m tokens.LayoutMetrics) layoutScores {
	return layoutScores{
		Density:        normalize.Clamp01(m.DensityScore),
		Whitespace:     normalize.Clamp01(m.WhitespaceRatio),
		PaddingConsist: normalize.Clamp01(m.PaddingConsistency),
		ImageTextBal:   normalize.Clamp01(m.ImageTextBalance),
		Grouping:       normalize.Clamp01(m.GroupingStrength),
		Complexity:     normalize.Clamp01(m.CompositionalComplexity),
		BorderHeavy:    normalize.Clamp01(m.BorderHeaviness),
		ShadowDepth:    normalize.Clamp01(m.ShadowDepth),
		MedianArea:     -1, // sentinel: use m.ElementScale directly
		GridRegularity: normalize.Clamp01(m.GridRegularity),
		VerticalRhythm: normalize.Clamp01(m.VerticalRhythm),
	}
}

func visibleNodes(nodes []tokens.LayoutNode) []tokens.LayoutNode {
	out := make([]tokens.LayoutNode, 0, len(nodes))
	for _, n := range nodes {
		if n.BBox.Area() > 0 {
			out = append(out, n)
		}
	}
	return out
}

// densityScore log-scales nodes-per-megapixel so that densityMidpoint maps
// to 0.5 and the tail compresses instead of saturating.
func densityScore(count int, vpArea float64) float64 {
	if vpArea <= 0 || count == 0 {
		return 0
	}
	perMP := float64(count) / (vpArea / 1e6)
	return normalize.Clamp01(math.Log1p(perMP) / (2 * math.Log1p(densityMidpoint)))
}

// whitespaceRatio rasterizes the first viewport onto a coarse occupancy grid
// and returns the fraction of uncovered cells.
func whitespaceRatio(nodes []tokens.LayoutNode, vp tokens.Viewport) float64 {
	if vp.Width <= 0 || vp.Height <= 0 {
		return 0
	}
	cellW := float64(vp.Width) / whitespaceGrid
	cellH := float64(vp.Height) / whitespaceGrid
	var occupied [whitespaceGrid][whitespaceGrid]bool
	for _, n := range nodes {
		b := n.BBox
		if b.Y >= float64(vp.Height) || b.Y+b.H <= 0 {
			continue
		}
		// Leaf-ish heuristic: huge containers cover everything and would
		// zero out the signal.
		if b.Area() > 0.5*vp.Area() {
			continue
		}
		x0 := int(math.Max(0, b.X/cellW))
		x1 := int(math.Min(whitespaceGrid-1, (b.X+b.W)/cellW))
		y0 := int(math.Max(0, b.Y/cellH))
		y1 := int(math.Min(whitespaceGrid-1, (b.Y+b.H)/cellH))
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				occupied[y][x] = true
			}
		}
	}
	empty := 0
	for y := 0; y < whitespaceGrid; y++ {
		for x := 0; x < whitespaceGrid; x++ {
			if !occupied[y][x] {
				empty++
			}
		}
	}
	return float64(empty) / (whitespaceGrid * whitespaceGrid)
}

// paddingConsistency is 1 - CV of the nodes' vertical padding values.
// Fewer than two padded nodes give no dispersion signal; return the neutral
// midpoint.
func paddingConsistency(nodes []tokens.LayoutNode) float64 {
	var pads []float64
	for _, n := range nodes {
		v, h := tokens.ParsePadding(n.Styles.Padding)
		if v > 0 || h > 0 {
			pads = append(pads, v+h)
		}
	}
	if len(pads) < 2 {
		return 0.5
	}
	return normalize.Clamp01(1 - coefVariation(pads))
}

func imageTextBalance(nodes []tokens.LayoutNode) float64 {
	var imgArea, textArea float64
	for i := range nodes {
		switch {
		case nodes[i].IsImage():
			imgArea += nodes[i].BBox.Area()
		case nodes[i].HasText():
			textArea += nodes[i].BBox.Area()
		}
	}
	if imgArea+textArea == 0 {
		return 0
	}
	return imgArea / (imgArea + textArea)
}

// groupingStrength samples pairwise overlaps: for each of the first
// overlapSampleA nodes, scan the next overlapSampleB and count
// intersections. Heavily nested layouts score high.
func groupingStrength(nodes []tokens.LayoutNode) float64 {
	if len(nodes) < 2 {
		return 0
	}
	limA := len(nodes)
	if limA > overlapSampleA {
		limA = overlapSampleA
	}
	pairs, hits := 0, 0
	for i := 0; i < limA; i++ {
		for j := i + 1; j < len(nodes) && j <= i+overlapSampleB; j++ {
			pairs++
			if nodes[i].BBox.Overlaps(nodes[j].BBox) {
				hits++
			}
		}
	}
	if pairs == 0 {
		return 0
	}
	return float64(hits) / float64(pairs)
}

// compositionalComplexity counts distinct occupied horizontal bands,
// log-scaled against a 16-band reference.
func compositionalComplexity(nodes []tokens.LayoutNode) float64 {
	bands := make(map[int]struct{})
	for _, n := range nodes {
		bands[int(n.BBox.Y/yBandHeight)] = struct{}{}
	}
	return normalize.Clamp01(math.Log1p(float64(len(bands))) / math.Log1p(16))
}

func borderHeaviness(nodes []tokens.LayoutNode) float64 {
	if len(nodes) == 0 {
		return 0
	}
	bordered := 0
	for _, n := range nodes {
		if px := firstPx(n.Styles.BorderWidth); px > 0 {
			bordered++
		}
	}
	return float64(bordered) / float64(len(nodes))
}

// shadowDepth averages per-node shadow blur against a 24px reference blur.
func shadowDepth(nodes []tokens.LayoutNode) float64 {
	if len(nodes) == 0 {
		return 0
	}
	var sum float64
	for _, n := range nodes {
		sum += ShadowBlurScore(n.Styles.BoxShadow)
	}
	return sum / float64(len(nodes))
}

func medianArea(nodes []tokens.LayoutNode) float64 {
	if len(nodes) == 0 {
		return 0
	}
	areas := make([]float64, len(nodes))
	for i := range nodes {
		areas[i] = nodes[i].BBox.Area()
	}
	sort.Float64s(areas)
	return areas[len(areas)/2]
}

// gridRegularity measures left-edge alignment: the share of nodes whose
// x-origin falls on one of the three most common 8px-snapped columns.
func gridRegularity(nodes []tokens.LayoutNode) float64 {
	if len(nodes) == 0 {
		return 0
	}
	cols := make(map[int]int)
	for _, n := range nodes {
		cols[int(math.Round(n.BBox.X/8))]++
	}
	counts := make([]int, 0, len(cols))
	for _, c := range cols {
		counts = append(counts, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	aligned := 0
	for i := 0; i < len(counts) && i < 3; i++ {
		aligned += counts[i]
	}
	return float64(aligned) / float64(len(nodes))
}

// verticalRhythm is 1 - CV of the gaps between consecutive occupied
// horizontal bands.
func verticalRhythm(nodes []tokens.LayoutNode) float64 {
	bands := make(map[int]struct{})
	for _, n := range nodes {
		bands[int(n.BBox.Y/yBandHeight)] = struct{}{}
	}
	ys := make([]float64, 0, len(bands))
	for b := range bands {
		ys = append(ys, float64(b))
	}
	if len(ys) < 3 {
		return 0.5
	}
	sort.Float64s(ys)
	gaps := make([]float64, 0, len(ys)-1)
	for i := 1; i < len(ys); i++ {
		gaps = append(gaps, ys[i]-ys[i-1])
	}
	return normalize.Clamp01(1 - coefVariation(gaps))
}

// ShadowBlurScore extracts the largest blur radius from a box-shadow value
// and scales it against a 24px reference. "none" and unparseable input
// score 0.
func ShadowBlurScore(boxShadow string) float64 {
	s := strings.TrimSpace(boxShadow)
	if s == "" || s == "none" {
		return 0
	}
	var maxPx float64
	for _, layer := range strings.Split(s, ",") {
		fields := strings.Fields(layer)
		// offset-x offset-y blur [spread] [color]; blur is the third px token.
		pxSeen := 0
		for _, f := range fields {
			if !strings.HasSuffix(f, "px") {
				continue
			}
			pxSeen++
			if pxSeen == 3 {
				if v, err := strconv.ParseFloat(strings.TrimSuffix(f, "px"), 64); err == nil && v > maxPx {
					maxPx = v
				}
			}
		}
	}
	return normalize.Clamp01(maxPx / 24)
}

func firstPx(s string) float64 {
	for _, f := range strings.Fields(s) {
		if strings.HasSuffix(f, "px") {
			if v, err := strconv.ParseFloat(strings.TrimSuffix(f, "px"), 64); err == nil {
				return v
			}
		}
	}
	return 0
}

func coefVariation(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	if mean == 0 {
		return 0
	}
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss/float64(len(vals))) / mean
}
