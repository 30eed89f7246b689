package resources

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register decoder for FromJPEG dimension probing
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/docfold/pdfgen/filters"
)

// RasterImage is a decoded pixel buffer handed to RegisterImage. Pix holds
// rows top-to-bottom with no padding: 3 bytes per pixel for DeviceRGB, 1 for
// DeviceGray. Alpha, when present, holds one byte per pixel. JPEG holds the
// original compressed file when the source was a JPEG, enabling pass-through
// encoding.
type RasterImage struct {
	Width            int
	Height           int
	ColorSpace       string // "DeviceRGB" or "DeviceGray"
	BitsPerComponent int
	Pix              []byte
	Alpha            []byte
	JPEG             []byte
}

func (img RasterImage) channels() int {
	if img.ColorSpace == "DeviceGray" {
		return 1
	}
	return 3
}

func (img RasterImage) validate() error {
	if img.Width <= 0 || img.Height <= 0 {
		return &InvalidResourceError{Reason: fmt.Sprintf("image dimensions %dx%d", img.Width, img.Height)}
	}
	if len(img.JPEG) > 0 {
		return nil
	}
	if img.ColorSpace != "DeviceRGB" && img.ColorSpace != "DeviceGray" {
		return &InvalidResourceError{Reason: fmt.Sprintf("color space %q", img.ColorSpace)}
	}
	if img.BitsPerComponent != 8 {
		return &InvalidResourceError{Reason: fmt.Sprintf("bits per component %d", img.BitsPerComponent)}
	}
	want := img.Width * img.Height * img.channels()
	if len(img.Pix) != want {
		return &InvalidResourceError{Reason: fmt.Sprintf("pixel buffer is %d bytes, want %d", len(img.Pix), want)}
	}
	if img.Alpha != nil && len(img.Alpha) != img.Width*img.Height {
		return &InvalidResourceError{Reason: fmt.Sprintf("alpha buffer is %d bytes, want %d", len(img.Alpha), img.Width*img.Height)}
	}
	return nil
}

// pickFilter resolves filters.Auto: JPEG sources pass through as DCT,
// everything else gets the lossless flate filter.
func (img RasterImage) pickFilter(f filters.Filter) filters.Filter {
	if f != filters.Auto {
		return f
	}
	if len(img.JPEG) > 0 {
		return filters.DCT
	}
	return filters.Flate
}

// hasTransparency reports whether the alpha plane carries information. A
// uniformly opaque plane is equivalent to no plane at all, and the soft mask
// is omitted entirely.
func (img RasterImage) hasTransparency() bool {
	for _, a := range img.Alpha {
		if a != 0xFF {
			return true
		}
	}
	return false
}

// fingerprint summarizes the normalized content plus the chosen filter.
func (img RasterImage) fingerprint(filter filters.Filter) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "image\x00%d\x00%d\x00%s\x00%d\x00%s\x00",
		img.Width, img.Height, img.ColorSpace, img.BitsPerComponent, filter)
	if filter == filters.DCT {
		h.Write(img.JPEG)
	} else {
		h.Write(img.Pix)
		if img.hasTransparency() {
			h.Write([]byte{1})
			h.Write(img.Alpha)
		} else {
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FromImage converts a decoded image.Image into a RasterImage, splitting the
// color channels from the alpha plane.
func FromImage(src image.Image) RasterImage {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Non-premultiplied conversion keeps the raw color values.
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, xdraw.Src)

	pix := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	for i := 0; i < w*h; i++ {
		o := i * 4
		pix = append(pix, nrgba.Pix[o], nrgba.Pix[o+1], nrgba.Pix[o+2])
		alpha = append(alpha, nrgba.Pix[o+3])
	}

	return RasterImage{
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Pix:              pix,
		Alpha:            alpha,
	}
}

// FromImageScaled converts src while scaling it to the given size.
func FromImageScaled(src image.Image, width, height int) RasterImage {
	scaled := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return FromImage(scaled)
}

// FromJPEG wraps an already-compressed JPEG file for pass-through encoding.
// Only the header is parsed, for dimensions and color space.
func FromJPEG(data []byte) (RasterImage, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return RasterImage{}, &InvalidResourceError{Reason: "jpeg header", Err: err}
	}
	if format != "jpeg" {
		return RasterImage{}, &InvalidResourceError{Reason: fmt.Sprintf("expected jpeg data, got %s", format)}
	}
	colorSpace := "DeviceRGB"
	if cfg.ColorModel == color.GrayModel {
		colorSpace = "DeviceGray"
	}
	return RasterImage{
		Width:            cfg.Width,
		Height:           cfg.Height,
		ColorSpace:       colorSpace,
		BitsPerComponent: 8,
		JPEG:             data,
	}, nil
}
