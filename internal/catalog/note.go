package catalog

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// Note is the guideline documentation attached to a block type. Notes live
// next to catalog files as "<keyname>.md".
type Note struct {
	Keyname  string
	Title    string
	Summary  string
	Category string
	Tags     []string
	Hidden   bool
	Body     []byte
}

type noteEnvelope struct {
	Title    string   `yaml:"title"`
	Keyname  string   `yaml:"keyname"`
	Summary  string   `yaml:"summary"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
	Hidden   bool     `yaml:"hidden"`
}

// ParseNote splits a guideline note into its frontmatter and markdown body.
func ParseNote(source []byte) (Note, error) {
	var meta noteEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Note{}, fmt.Errorf("catalog: parse note frontmatter: %w", err)
	}
	return Note{
		Keyname:  strings.TrimSpace(meta.Keyname),
		Title:    strings.TrimSpace(meta.Title),
		Summary:  strings.TrimSpace(meta.Summary),
		Category: strings.TrimSpace(meta.Category),
		Tags:     meta.Tags,
		Hidden:   meta.Hidden,
		Body:     bytes.TrimSpace(body),
	}, nil
}
