package reader

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/tsawler/cardiograph/core"
	"github.com/tsawler/cardiograph/pages"
)

// PageImage is an image XObject extracted from a page. Scanned printouts
// carry their whole rendering as one of these, which the OCR fallback
// consumes.
type PageImage struct {
	Name             string // XObject name (e.g., "Im1")
	Width            int
	Height           int
	ColorSpace       string // DeviceGray, DeviceRGB, DeviceCMYK, ...
	BitsPerComponent int
	Data             []byte // decoded pixel data
	Filter           string // first /Filter name, for format detection
}

// ExtractPageImages extracts all image XObjects from a page's resources.
// XObjects that fail to resolve or decode are skipped.
func (r *Reader) ExtractPageImages(page *pages.Page) ([]PageImage, error) {
	resources, ok := page.Resources()
	if !ok {
		return nil, nil
	}
	xobjObj, err := r.Resolve(resources.Get("XObject"))
	if err != nil {
		return nil, fmt.Errorf("resolve /XObject: %w", err)
	}
	xobjects, ok := xobjObj.(core.Dict)
	if !ok {
		return nil, nil
	}

	var images []PageImage
	for name, obj := range xobjects {
		resolved, err := r.Resolve(obj)
		if err != nil {
			continue
		}
		stream, ok := resolved.(*core.Stream)
		if !ok {
			continue
		}
		if subtype, _ := stream.Dict.GetName("Subtype"); subtype != "Image" {
			continue
		}
		img, err := r.extractImage(name, stream)
		if err != nil {
			continue
		}
		images = append(images, *img)
	}
	return images, nil
}

func (r *Reader) extractImage(name string, stream *core.Stream) (*PageImage, error) {
	width, ok1 := stream.Dict.GetInt("Width")
	height, ok2 := stream.Dict.GetInt("Height")
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("image missing /Width or /Height")
	}

	bpc := 8
	if n, ok := stream.Dict.GetInt("BitsPerComponent"); ok {
		bpc = int(n)
	}

	colorSpace := "DeviceGray"
	if cs := stream.Dict.Get("ColorSpace"); cs != nil {
		colorSpace = r.colorSpaceName(cs)
	}

	filter := ""
	switch f := stream.Dict.Get("Filter").(type) {
	case core.Name:
		filter = string(f)
	case core.Array:
		if len(f) > 0 {
			if n, ok := f[0].(core.Name); ok {
				filter = string(n)
			}
		}
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode image stream: %w", err)
	}

	return &PageImage{
		Name:             name,
		Width:            int(width),
		Height:           int(height),
		ColorSpace:       colorSpace,
		BitsPerComponent: bpc,
		Data:             data,
		Filter:           filter,
	}, nil
}

// colorSpaceName reduces a color space object to a simple name.
func (r *Reader) colorSpaceName(obj core.Object) string {
	resolved, err := r.Resolve(obj)
	if err != nil {
		return "DeviceGray"
	}
	switch v := resolved.(type) {
	case core.Name:
		return string(v)
	case core.Array:
		if len(v) > 0 {
			if name, ok := v[0].(core.Name); ok {
				if name == "Indexed" && len(v) > 1 {
					return r.colorSpaceName(v[1])
				}
				return string(name)
			}
		}
	}
	return "DeviceGray"
}

// ToPNG converts the decoded pixel data to PNG, the format handed to the
// OCR engine.
func (img *PageImage) ToPNG() ([]byte, error) {
	var goImg image.Image
	var err error

	switch img.ColorSpace {
	case "DeviceRGB", "CalRGB":
		goImg, err = img.toRGBImage()
	case "DeviceCMYK":
		goImg, err = img.toCMYKImage()
	default:
		goImg, err = img.toGrayImage()
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, goImg); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (img *PageImage) toGrayImage() (*image.Gray, error) {
	switch img.BitsPerComponent {
	case 1:
		return img.toBilevelGray()
	case 8:
		goImg := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
		need := img.Width * img.Height
		if len(img.Data) < need {
			return nil, fmt.Errorf("gray image data short: got %d, need %d", len(img.Data), need)
		}
		copy(goImg.Pix, img.Data[:need])
		return goImg, nil
	}
	return nil, fmt.Errorf("unsupported gray depth %d", img.BitsPerComponent)
}

// toBilevelGray expands 1-bit data (CCITT output) to 8-bit grayscale.
// Rows are padded to whole bytes, MSB first; 0 is black.
func (img *PageImage) toBilevelGray() (*image.Gray, error) {
	goImg := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	stride := (img.Width + 7) / 8
	if len(img.Data) < stride*img.Height {
		return nil, fmt.Errorf("bi-level image data short: got %d, need %d", len(img.Data), stride*img.Height)
	}

	for y := 0; y < img.Height; y++ {
		row := img.Data[y*stride:]
		for x := 0; x < img.Width; x++ {
			if row[x/8]>>(7-x%8)&1 == 1 {
				goImg.Pix[y*img.Width+x] = 255
			}
		}
	}
	return goImg, nil
}

func (img *PageImage) toRGBImage() (*image.RGBA, error) {
	if img.BitsPerComponent != 8 {
		return nil, fmt.Errorf("unsupported RGB depth %d", img.BitsPerComponent)
	}
	goImg := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	need := img.Width * img.Height * 3
	if len(img.Data) < need {
		return nil, fmt.Errorf("RGB image data short: got %d, need %d", len(img.Data), need)
	}

	for i := 0; i < img.Width*img.Height; i++ {
		goImg.Pix[i*4+0] = img.Data[i*3+0]
		goImg.Pix[i*4+1] = img.Data[i*3+1]
		goImg.Pix[i*4+2] = img.Data[i*3+2]
		goImg.Pix[i*4+3] = 255
	}
	return goImg, nil
}

func (img *PageImage) toCMYKImage() (*image.RGBA, error) {
	if img.BitsPerComponent != 8 {
		return nil, fmt.Errorf("unsupported CMYK depth %d", img.BitsPerComponent)
	}
	goImg := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	need := img.Width * img.Height * 4
	if len(img.Data) < need {
		return nil, fmt.Errorf("CMYK image data short: got %d, need %d", len(img.Data), need)
	}

	for i := 0; i < img.Width*img.Height; i++ {
		r, g, b := color.CMYKToRGB(img.Data[i*4], img.Data[i*4+1], img.Data[i*4+2], img.Data[i*4+3])
		goImg.Pix[i*4+0] = r
		goImg.Pix[i*4+1] = g
		goImg.Pix[i*4+2] = b
		goImg.Pix[i*4+3] = 255
	}
	return goImg, nil
}
