package domain

import (
	"context"
	"image"
)

// Displayer presents a rendered figure to the user.
type Displayer interface {
	// Show displays img under a short, file-name-safe name.
	Show(ctx context.Context, name string, img image.Image) error
}
