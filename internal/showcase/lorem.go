package showcase

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var loremWords = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do
eiusmod tempor incididunt ut labore et dolore magna aliqua enim ad minim veniam quis nostrud
exercitation ullamco laboris nisi aliquip ex ea commodo consequat duis aute irure in
reprehenderit voluptate velit esse cillum fugiat nulla pariatur excepteur sint occaecat
cupidatat non proident sunt culpa qui officia deserunt mollit anim id est laborum`)

// Lorem produces placeholder text from a seeded source.
type Lorem struct {
	rng      *rand.Rand
	markdown goldmark.Markdown
}

// NewLorem returns a generator whose output is fixed by seed.
func NewLorem(seed int64) *Lorem {
	return &Lorem{
		rng:      rand.New(rand.NewSource(seed)),
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Words returns n space separated words.
func (l *Lorem) Words(n int) string {
	if n <= 0 {
		return ""
	}
	words := make([]string, n)
	for i := range words {
		words[i] = loremWords[l.rng.Intn(len(loremWords))]
	}
	return strings.Join(words, " ")
}

// Sentence returns a capitalised sentence of 8 to 15 words.
func (l *Lorem) Sentence() string {
	sentence := l.Words(l.between(8, 15))
	return strings.ToUpper(sentence[:1]) + sentence[1:] + "."
}

// Wysiwyg renders one to three paragraphs, an optional bullet list and one
// or two closing paragraphs as HTML.
func (l *Lorem) Wysiwyg() (string, error) {
	var src strings.Builder
	for range l.between(1, 3) {
		fmt.Fprintf(&src, "%s\n\n", l.Words(l.between(50, 100)))
	}
	if items := l.rng.Intn(13); items > 0 {
		for range items {
			fmt.Fprintf(&src, "- %s\n", l.Words(l.between(4, 6)))
		}
		src.WriteString("\n")
	}
	for range l.between(1, 2) {
		fmt.Fprintf(&src, "%s\n\n", l.Words(l.between(50, 100)))
	}

	var buf bytes.Buffer
	if err := l.markdown.Convert([]byte(src.String()), &buf); err != nil {
		return "", fmt.Errorf("showcase: render wysiwyg placeholder: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (l *Lorem) between(lo, hi int) int {
	return lo + l.rng.Intn(hi-lo+1)
}
