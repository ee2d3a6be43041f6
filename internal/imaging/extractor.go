// Package imaging computes perceptual fingerprints from decoded images.
package imaging

import (
	"context"
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
	"github.com/nfnt/resize"

	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
)

// thumbSize is the edge of the thumbnail used for color statistics.
const thumbSize = 32

// Thresholds for the scalar color features, on a 0-255 channel scale.
type Thresholds struct {
	// Bright: mean luma above this sets the bright bit.
	Bright float64
	// Colorful: mean per-pixel channel variance above this sets the colorful bit.
	Colorful float64
	// NeutralSpread: if the mean channels differ by less than this, the
	// dominant color is neutral.
	NeutralSpread float64
}

// DefaultThresholds returns the thresholds used by the CLI and the API.
func DefaultThresholds() Thresholds {
	return Thresholds{Bright: 128, Colorful: 100, NeutralSpread: 12}
}

// Extractor builds fingerprints in a fixed layout.
type Extractor struct {
	layout     fingerprint.Layout
	thresholds Thresholds
}

// NewExtractor creates an extractor for the given layout.
func NewExtractor(layout fingerprint.Layout, th Thresholds) *Extractor {
	return &Extractor{layout: layout, thresholds: th}
}

// Layout returns the layout of produced fingerprints.
func (e *Extractor) Layout() fingerprint.Layout { return e.layout }

// Extract decodes data and fingerprints the image.
func (e *Extractor) Extract(ctx context.Context, data []byte) (fingerprint.Fingerprint, error) {
	if err := ctx.Err(); err != nil {
		return fingerprint.Fingerprint{}, err
	}
	img, _, err := Decode(data)
	if err != nil {
		return fingerprint.Fingerprint{}, err
	}
	return e.FromImage(img)
}

// FromImage fingerprints an already decoded image.
func (e *Extractor) FromImage(img image.Image) (fingerprint.Fingerprint, error) {
	if img == nil || img.Bounds().Empty() {
		return fingerprint.Fingerprint{}, errEmptyImage
	}
	s := e.layout.HashSize()

	dh, err := goimagehash.ExtDifferenceHash(img, s, s)
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("difference hash: %w", err)
	}
	ah, err := goimagehash.ExtAverageHash(img, s, s)
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("average hash: %w", err)
	}

	st := colorStats(resize.Resize(thumbSize, thumbSize, img, resize.Bilinear))

	return e.layout.Compose(fingerprint.Features{
		DHash:    dh.GetHash(),
		AHash:    ah.GetHash(),
		Colorful: st.variance > e.thresholds.Colorful,
		Bright:   st.luma > e.thresholds.Bright,
		Dominant: dominant(st, e.thresholds.NeutralSpread),
	})
}

type stats struct {
	r, g, b  float64
	luma     float64
	variance float64
}

func colorStats(img image.Image) stats {
	var st stats
	bounds := img.Bounds()
	n := float64(bounds.Dx() * bounds.Dy())
	if n == 0 {
		return st
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r, g, b := float64(r16>>8), float64(g16>>8), float64(b16>>8)
			m := (r + g + b) / 3
			st.r += r
			st.g += g
			st.b += b
			st.luma += 0.299*r + 0.587*g + 0.114*b
			st.variance += ((r-m)*(r-m) + (g-m)*(g-m) + (b-m)*(b-m)) / 3
		}
	}
	st.r /= n
	st.g /= n
	st.b /= n
	st.luma /= n
	st.variance /= n
	return st
}

func dominant(st stats, neutralSpread float64) uint64 {
	hi := max(st.r, st.g, st.b)
	lo := min(st.r, st.g, st.b)
	switch {
	case hi-lo < neutralSpread:
		return fingerprint.ColorNeutral
	case hi == st.r:
		return fingerprint.ColorRed
	case hi == st.g:
		return fingerprint.ColorGreen
	default:
		return fingerprint.ColorBlue
	}
}

// HealthCheck fingerprints a generated image to prove the hashing path works.
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	fp, err := e.FromImage(img)
	if err != nil {
		return fmt.Errorf("self-test: %w", err)
	}
	if fp.Width() != e.layout.Width() {
		return fmt.Errorf("self-test: width %d, want %d", fp.Width(), e.layout.Width())
	}
	return nil
}
