package qr

import (
	"image/color"

	"github.com/skip2/go-qrcode"
)

// Ticket is the preset for participation tickets.
var Ticket = Config{
	Size:           512,
	QuietZone:      24,
	DotScale:       0.9,
	LogoScale:      0.2,
	LogoFade:       0.5,
	RecoveryLevel:  qrcode.High,
	Background:     color.RGBA{R: 20, G: 20, B: 20, A: 255},
	Foreground:     color.RGBA{R: 230, G: 230, B: 230, A: 255},
	LogoBackground: color.RGBA{R: 20, G: 20, B: 20, A: 255},
}
