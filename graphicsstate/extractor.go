package graphicsstate

import (
	"errors"
	"fmt"

	"github.com/tsawler/cardiograph/contentstream"
	"github.com/tsawler/cardiograph/core"
	"github.com/tsawler/cardiograph/model"
)

// ErrMalformedOperand reports a non-numeric operand on an operator that
// requires numbers.
var ErrMalformedOperand = errors.New("malformed numeric operand")

// PathExtractor walks content stream operations and collects every
// stroked path in page space.
type PathExtractor struct {
	gs         GraphicsState
	stack      []GraphicsState
	builder    pathBuilder
	paths      []DrawingPath
	pageHeight float64
}

// NewPathExtractor creates an extractor for a page of the given height.
// The height drives the flip from PDF bottom-left coordinates to
// top-left page space.
func NewPathExtractor(pageHeight float64) *PathExtractor {
	return &PathExtractor{
		gs:         NewGraphicsState(),
		pageHeight: pageHeight,
	}
}

// ExtractFromBytes parses raw content stream data and extracts its
// stroked paths.
func (px *PathExtractor) ExtractFromBytes(data []byte) ([]DrawingPath, error) {
	ops, err := contentstream.NewParser(data).Parse()
	if err != nil {
		return nil, err
	}
	return px.Extract(ops)
}

// Extract processes operations in order and returns the stroked paths,
// in painting order.
func (px *PathExtractor) Extract(ops []contentstream.Operation) ([]DrawingPath, error) {
	for _, op := range ops {
		if err := px.process(op); err != nil {
			return nil, fmt.Errorf("operator %s: %w", op.Operator, err)
		}
	}
	return px.paths, nil
}

func (px *PathExtractor) process(op contentstream.Operation) error {
	switch op.Operator {
	case "q":
		px.stack = append(px.stack, px.gs)
	case "Q":
		// Restoring with an empty stack is a no-op; some generators
		// emit an unbalanced trailing Q.
		if n := len(px.stack); n > 0 {
			px.gs = px.stack[n-1]
			px.stack = px.stack[:n-1]
		}

	case "cm":
		vals, ok, err := numericOperands(op, 6)
		if err != nil {
			return err
		}
		if ok {
			px.gs.Concat(model.Matrix{vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]})
		}

	case "w":
		vals, ok, err := numericOperands(op, 1)
		if err != nil {
			return err
		}
		if ok {
			px.gs.LineWidth = vals[0]
		}

	case "RG":
		vals, ok, err := numericOperands(op, 3)
		if err != nil {
			return err
		}
		if ok {
			px.gs.SetStrokeRGB(vals[0], vals[1], vals[2])
		}
	case "G":
		vals, ok, err := numericOperands(op, 1)
		if err != nil {
			return err
		}
		if ok {
			px.gs.SetStrokeGray(vals[0])
		}
	case "K":
		vals, ok, err := numericOperands(op, 4)
		if err != nil {
			return err
		}
		if ok {
			px.gs.SetStrokeCMYK(vals[0], vals[1], vals[2], vals[3])
		}
	case "SC", "SCN":
		// Color is set for the gray, RGB, and CMYK arities. SCN in a
		// separation space may carry other operand counts, which leave
		// the color unchanged, but a non-numeric operand at a color
		// arity (such as a pattern name) is malformed.
		switch n := len(op.Operands); n {
		case 1, 3, 4:
			vals, _, err := numericOperands(op, n)
			if err != nil {
				return err
			}
			px.gs.SetStrokeComponents(vals)
		}

	case "m":
		vals, ok, err := numericOperands(op, 2)
		if err != nil {
			return err
		}
		if ok {
			px.builder.MoveTo(px.toPage(vals[0], vals[1]))
		}
	case "l":
		vals, ok, err := numericOperands(op, 2)
		if err != nil {
			return err
		}
		if ok {
			px.builder.LineTo(px.toPage(vals[0], vals[1]))
		}
	case "c":
		// Curves are flattened to their endpoint: the waveform traces
		// are polylines, and curve operators only occur in decorative
		// artwork where chord accuracy is irrelevant.
		vals, ok, err := numericOperands(op, 6)
		if err != nil {
			return err
		}
		if ok {
			px.builder.LineTo(px.toPage(vals[4], vals[5]))
		}
	case "v", "y":
		vals, ok, err := numericOperands(op, 4)
		if err != nil {
			return err
		}
		if ok {
			px.builder.LineTo(px.toPage(vals[2], vals[3]))
		}
	case "h":
		px.builder.Close()
	case "re":
		vals, ok, err := numericOperands(op, 4)
		if err != nil {
			return err
		}
		if ok {
			x, y, w, h := vals[0], vals[1], vals[2], vals[3]
			px.builder.Rect(
				px.toPage(x, y),
				px.toPage(x+w, y),
				px.toPage(x+w, y+h),
				px.toPage(x, y+h),
			)
		}

	case "S":
		px.stroke()
	case "s":
		px.builder.Close()
		px.stroke()
	case "B", "B*", "b", "b*":
		// Fill-and-stroke variants emit the segments as built; only the
		// close-stroke operator s adds a closing segment.
		px.stroke()
	case "f", "F", "f*", "n":
		px.builder.Reset()
	}
	return nil
}

// toPage maps user-space coordinates through the CTM into top-left
// page space.
func (px *PathExtractor) toPage(x, y float64) model.Point {
	return px.gs.CTM.ToPageSpace(model.Point{X: x, Y: y}, px.pageHeight)
}

// stroke emits the current path with the current stroke state and
// starts a fresh path.
func (px *PathExtractor) stroke() {
	if !px.builder.Empty() {
		px.paths = append(px.paths, DrawingPath{
			Segments: px.builder.Segments(),
			Color:    px.gs.StrokeColor,
			Width:    px.gs.LineWidth,
		})
	}
	px.builder.Reset()
}

// numericOperands extracts want numeric operands from op. A wrong
// operand count reports ok false so the operator is skipped with state
// unchanged. A non-numeric operand where a number belongs is a fatal
// ErrMalformedOperand.
func numericOperands(op contentstream.Operation, want int) ([]float64, bool, error) {
	if len(op.Operands) != want {
		return nil, false, nil
	}
	vals := make([]float64, want)
	for i, operand := range op.Operands {
		v, ok := core.Float(operand)
		if !ok {
			return nil, false, fmt.Errorf("%w: operand %d is %T", ErrMalformedOperand, i, operand)
		}
		vals[i] = v
	}
	return vals, true, nil
}
