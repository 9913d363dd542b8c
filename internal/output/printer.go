// Package output writes response envelopes to stdout, either as the
// machine-readable JSON document or as a rendered summary for humans.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"devion/pkg/devtypes"
)

// Mode selects how envelopes are written.
type Mode string

// Output modes.
const (
	ModeJSON   Mode = "json"
	ModePretty Mode = "pretty"
)

// DefaultWordWrap is the wrap width for pretty output.
const DefaultWordWrap = 80

// Printer writes envelopes.
type Printer struct {
	writer   io.Writer
	mode     Mode
	style    string
	wordWrap int

	mu sync.Mutex
}

// NewPrinter creates a new Printer with the given options.
// By default, it writes JSON to os.Stdout.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer:   os.Stdout,
		mode:     ModeJSON,
		wordWrap: DefaultWordWrap,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Mode returns the printer's output mode.
func (p *Printer) Mode() Mode {
	return p.mode
}

// PrintEnvelope writes env in the printer's mode. Pretty rendering falls
// back to JSON if the renderer fails.
func (p *Printer) PrintEnvelope(env devtypes.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode == ModePretty {
		style := p.style
		if style == "" {
			style = DetectStyle(termenv.EnvColorProfile(), termenv.HasDarkBackground())
		}
		text, err := RenderText(env, style, p.wordWrap)
		if err == nil {
			_, err = io.WriteString(p.writer, text)
			return err
		}
	}
	return WriteJSON(p.writer, env)
}

// WriteJSON writes env as indented JSON followed by a newline.
func WriteJSON(w io.Writer, env devtypes.Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env.Normalize()); err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	return nil
}

// DetectStyle maps a terminal color profile to a glamour style.
func DetectStyle(profile termenv.Profile, dark bool) string {
	switch {
	case profile == termenv.Ascii:
		return "notty"
	case dark:
		return "dark"
	default:
		return "light"
	}
}

// RenderText renders env as markdown through glamour.
func RenderText(env devtypes.Envelope, style string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(Markdown(env))
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Markdown builds the human summary of env.
func Markdown(env devtypes.Envelope) string {
	env = env.Normalize()
	var b strings.Builder

	if env.Success {
		b.WriteString("# ✅ Success\n\n")
	} else {
		b.WriteString("# ❌ Failed\n\n")
	}
	if env.Message != "" {
		b.WriteString(env.Message + "\n\n")
	}

	if len(env.Errors) > 0 {
		b.WriteString("## Errors\n\n")
		for _, e := range env.Errors {
			// Multi-line errors such as stack traces go in code blocks.
			if strings.Contains(e, "\n") {
				b.WriteString("```\n" + strings.TrimRight(e, "\n") + "\n```\n\n")
				continue
			}
			b.WriteString("- " + e + "\n")
		}
		b.WriteString("\n")
	}

	if env.Data != nil {
		b.WriteString("## Data\n\n")
		b.WriteString(dataMarkdown(env.Data))
	}
	return b.String()
}

// dataMarkdown lists scalar top-level fields and shows nested values as JSON.
func dataMarkdown(data any) string {
	var generic any
	raw, err := json.Marshal(data)
	if err == nil {
		err = json.Unmarshal(raw, &generic)
	}
	if err != nil {
		return fmt.Sprintf("```\n%v\n```\n", data)
	}

	obj, ok := generic.(map[string]any)
	if !ok {
		return jsonBlock(generic)
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		switch v := obj[k].(type) {
		case map[string]any, []any:
			b.WriteString("### " + k + "\n\n")
			b.WriteString(jsonBlock(v))
			b.WriteString("\n")
		case nil:
			b.WriteString(fmt.Sprintf("- **%s**: null\n", k))
		default:
			b.WriteString(fmt.Sprintf("- **%s**: %v\n", k, v))
		}
	}
	return b.String()
}

func jsonBlock(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("```\n%v\n```\n", v)
	}
	return "```json\n" + string(data) + "\n```\n"
}
