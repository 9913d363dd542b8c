package output

import "io"

// Option is a functional option for configuring Printer instances.
type Option func(*Printer)

// WithWriter configures the printer to write output to the specified writer.
// Default is os.Stdout if not specified.
func WithWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.writer = writer
		}
	}
}

// WithMode configures the printer to operate in a specific output mode.
func WithMode(mode Mode) Option {
	return func(p *Printer) {
		p.mode = mode
	}
}

// Pretty renders envelopes as a markdown summary instead of JSON.
func Pretty() Option {
	return WithMode(ModePretty)
}

// WithStyle forces a glamour style such as "dark", "light" or "notty".
// By default the style follows the terminal's color profile.
func WithStyle(style string) Option {
	return func(p *Printer) {
		p.style = style
	}
}

// WithWordWrap sets the wrap width for pretty output.
func WithWordWrap(width int) Option {
	return func(p *Printer) {
		if width > 0 {
			p.wordWrap = width
		}
	}
}
