package tokens

import (
	"encoding/json"
	"fmt"
)

// BBox is an element bounding box in viewport pixels.
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns the box area; never negative.
func (b BBox) Area() float64 {
	if b.W <= 0 || b.H <= 0 {
		return 0
	}
	return b.W * b.H
}

// Overlaps reports whether two boxes intersect.
func (b BBox) Overlaps(o BBox) bool {
	return !(b.X+b.W < o.X || o.X+o.W < b.X || b.Y+b.H < o.Y || o.Y+o.H < b.Y)
}

// NodeStyles is the computed-style subset the layout features consume.
type NodeStyles struct {
	Padding         string `json:"padding"`
	BackgroundImage string `json:"backgroundImage"`
	BorderWidth     string `json:"borderWidth"`
	BoxShadow       string `json:"boxShadow"`
	FontSize        string `json:"fontSize"`
}

// LayoutNode is one element snapshot from the capture's computed-styles
// artifact.
type LayoutNode struct {
	Tag         string     `json:"tag"`
	BBox        BBox       `json:"bbox"`
	Styles      NodeStyles `json:"styles"`
	TextContent string     `json:"textContent"`
}

// Viewport is the capture viewport in CSS pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the viewport area in px².
func (v Viewport) Area() float64 { return float64(v.Width) * float64(v.Height) }

// LayoutSnapshot bundles the raw layout nodes with their viewport.
type LayoutSnapshot struct {
	Nodes    []LayoutNode `json:"nodes"`
	Viewport Viewport     `json:"viewport"`
}

// DecodeLayoutSnapshot parses the optional layout artifact. A snapshot
// without a positive viewport cannot anchor any density math and is
// rejected.
func DecodeLayoutSnapshot(raw []byte) (*LayoutSnapshot, error) {
	var snap LayoutSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("tokens: decode layout snapshot: %w", err)
	}
	if snap.Viewport.Width <= 0 || snap.Viewport.Height <= 0 {
		return nil, fmt.Errorf("tokens: layout snapshot has no usable viewport (%dx%d)",
			snap.Viewport.Width, snap.Viewport.Height)
	}
	return &snap, nil
}

// IsImage reports whether the node renders image-like content.
func (n *LayoutNode) IsImage() bool {
	switch n.Tag {
	case "img", "picture", "video", "svg", "canvas":
		return true
	}
	return n.Styles.BackgroundImage != "" && n.Styles.BackgroundImage != "none"
}

// HasText reports whether the node carries visible text.
func (n *LayoutNode) HasText() bool {
	for _, r := range n.TextContent {
		if r != ' ' && r != '\n' && r != '\t' {
			return true
		}
	}
	return false
}
