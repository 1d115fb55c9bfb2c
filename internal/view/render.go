package view

import (
	"encoding/json"
	"fmt"
	"io"
)

// Renderer writes a list of items.
type Renderer interface {
	Render(w io.Writer, items []string) error
}

// TextRenderer writes one numbered line per item, or "(empty)".
type TextRenderer struct{}

// Render implements Renderer.
func (TextRenderer) Render(w io.Writer, items []string) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}
	for i, item := range items {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, item); err != nil {
			return err
		}
	}
	return nil
}

// JSONRenderer writes {"items":[...]} followed by a newline.
type JSONRenderer struct{}

type jsonList struct {
	Items []string `json:"items"`
}

// Render implements Renderer.
func (JSONRenderer) Render(w io.Writer, items []string) error {
	if items == nil {
		items = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(jsonList{Items: items})
}

// RendererFor returns the renderer for an output format name.
// Unknown formats fall back to text.
func RendererFor(format string) Renderer {
	if format == "json" {
		return JSONRenderer{}
	}
	return TextRenderer{}
}
