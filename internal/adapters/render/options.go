package render

import "gonum.org/v1/plot/vg"

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the canvas size.
func WithSize(width, height vg.Length) Option {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithFormat sets the output format: png, svg or pdf.
func WithFormat(format string) Option {
	return func(r *Renderer) {
		r.format = format
	}
}
