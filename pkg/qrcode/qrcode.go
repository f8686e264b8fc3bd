package qr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
	"github.com/skip2/go-qrcode"
)

// Config describes how a QR code is rendered.
type Config struct {
	Content        string
	LogoPath       string
	Size           int     // Side of the code itself in pixels
	QuietZone      int     // Empty margin around the code in pixels
	DotScale       float64 // Dot diameter relative to a module, 1 draws touching dots
	LogoScale      float64 // Logo side relative to Size
	LogoFade       float64 // Width of the faded ring around the logo relative to its radius
	RecoveryLevel  qrcode.RecoveryLevel
	Background     color.Color
	Foreground     color.Color
	LogoBackground color.Color
}

// WithContent returns a copy of c that encodes content.
func (c Config) WithContent(content string) Config {
	c.Content = content
	return c
}

// Generate renders the code as PNG.
func (c Config) Generate() ([]byte, error) {
	code, err := qrcode.New(c.Content, c.RecoveryLevel)
	if err != nil {
		return nil, err
	}
	code.DisableBorder = true

	var logo image.Image
	if c.LogoPath != "" {
		logo, err = gg.LoadImage(c.LogoPath)
		if err != nil {
			return nil, err
		}
	}

	total := c.Size + 2*c.QuietZone
	dc := gg.NewContext(total, total)
	dc.SetColor(c.Background)
	dc.Clear()

	c.drawModules(dc, code.Bitmap(), logo != nil)
	if logo != nil {
		c.drawLogo(dc, logo)
	}

	var buf bytes.Buffer
	if err = png.Encode(&buf, dc.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawModules paints every dark module as a dot. Dots under the logo are
// dropped and dots in the ring around it fade out towards the logo.
func (c Config) drawModules(dc *gg.Context, bitmap [][]bool, withLogo bool) {
	r, g, b := rgb(c.Foreground)
	cell := float64(c.Size) / float64(len(bitmap))
	radius := cell / 2 * c.DotScale
	if radius <= 0 {
		radius = cell / 2
	}

	center := float64(dc.Width()) / 2
	logoRadius := float64(c.Size) * c.LogoScale / 2
	fadeRadius := logoRadius * (1 + c.LogoFade)

	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			px := float64(c.QuietZone) + (float64(x)+0.5)*cell
			py := float64(c.QuietZone) + (float64(y)+0.5)*cell

			alpha := 1.0
			if withLogo {
				alpha = fade(math.Hypot(px-center, py-center), logoRadius, fadeRadius)
			}
			if alpha == 0 {
				continue
			}
			dc.SetRGBA(r, g, b, alpha)
			dc.DrawCircle(px, py, radius)
			dc.Fill()
		}
	}
}

func (c Config) drawLogo(dc *gg.Context, logo image.Image) {
	side := int(float64(c.Size) * c.LogoScale)
	if side <= 0 {
		return
	}
	half := float64(side) / 2
	offset := (dc.Width() - side) / 2

	dc.Push()
	dc.DrawCircle(float64(offset)+half, float64(offset)+half, half)
	dc.Clip()
	dc.SetColor(c.LogoBackground)
	dc.DrawCircle(float64(offset)+half, float64(offset)+half, half)
	dc.Fill()
	dc.DrawImage(resize.Resize(uint(side), uint(side), logo, resize.Lanczos3), offset, offset)
	dc.ResetClip()
	dc.Pop()
}

// fade is 0 inside inner, 1 outside outer and linear in between.
func fade(distance, inner, outer float64) float64 {
	switch {
	case distance < inner:
		return 0
	case distance >= outer || outer <= inner:
		return 1
	}
	return (distance - inner) / (outer - inner)
}

func rgb(c color.Color) (r, g, b float64) {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return float64(rgba.R) / 255, float64(rgba.G) / 255, float64(rgba.B) / 255
}
