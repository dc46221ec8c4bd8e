package graphicsstate

import "github.com/tsawler/cardiograph/model"

// GraphicsState holds the slice of the PDF graphics state that affects
// stroked geometry. It is a value type: q copies it onto a stack and Q
// copies it back.
type GraphicsState struct {
	CTM         model.Matrix
	StrokeColor [3]float64
	LineWidth   float64
}

// NewGraphicsState returns the state at the start of a content stream:
// identity CTM, black stroke, line width 1.
func NewGraphicsState() GraphicsState {
	return GraphicsState{
		CTM:       model.Identity(),
		LineWidth: 1.0,
	}
}

// Concat right-multiplies m onto the CTM (cm operator).
func (gs *GraphicsState) Concat(m model.Matrix) {
	gs.CTM = gs.CTM.Concat(m)
}

// SetStrokeRGB sets the stroke color from RGB components (RG operator).
func (gs *GraphicsState) SetStrokeRGB(r, g, b float64) {
	gs.StrokeColor = [3]float64{r, g, b}
}

// SetStrokeGray sets the stroke color from a gray level (G operator).
func (gs *GraphicsState) SetStrokeGray(gray float64) {
	gs.StrokeColor = [3]float64{gray, gray, gray}
}

// SetStrokeCMYK sets the stroke color from CMYK components (K operator).
// Each channel converts as (1-component)*(1-black).
func (gs *GraphicsState) SetStrokeCMYK(c, m, y, k float64) {
	gs.StrokeColor = [3]float64{
		(1 - c) * (1 - k),
		(1 - m) * (1 - k),
		(1 - y) * (1 - k),
	}
}

// SetStrokeComponents sets the stroke color from a bare component list
// (SC and SCN operators), dispatching on arity: 1 is gray, 3 is RGB,
// 4 is CMYK. Other arities (separation and pattern spaces) are ignored.
func (gs *GraphicsState) SetStrokeComponents(comps []float64) {
	switch len(comps) {
	case 1:
		gs.SetStrokeGray(comps[0])
	case 3:
		gs.SetStrokeRGB(comps[0], comps[1], comps[2])
	case 4:
		gs.SetStrokeCMYK(comps[0], comps[1], comps[2], comps[3])
	}
}
