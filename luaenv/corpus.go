package luaenv

import (
	"fmt"
	"strings"
)

// Corpus holds the input text the session reasons over. It is immutable for
// the lifetime of a session: either a single text blob or an ordered list of
// documents.
type Corpus struct {
	docs []string
	text string
}

// FromText creates a Corpus from a single text blob.
func FromText(text string) *Corpus {
	return &Corpus{text: text}
}

// FromDocuments creates a Corpus from an ordered list of documents.
// The joined text view separates documents with a blank line.
func FromDocuments(docs []string) *Corpus {
	copied := make([]string, len(docs))
	copy(copied, docs)
	return &Corpus{
		docs: copied,
		text: strings.Join(copied, "\n\n"),
	}
}

// Text returns the full corpus text. For document corpora this is the
// documents joined in order.
func (c *Corpus) Text() string {
	return c.text
}

// IsDocumentList reports whether the corpus is an ordered document list.
func (c *Corpus) IsDocumentList() bool {
	return c.docs != nil
}

// Documents returns a copy of the document list, or nil for a text blob.
func (c *Corpus) Documents() []string {
	if c.docs == nil {
		return nil
	}
	copied := make([]string, len(c.docs))
	copy(copied, c.docs)
	return copied
}

// CharCount returns the total character count of the corpus text.
func (c *Corpus) CharCount() int {
	return len(c.text)
}

// DocCount returns the number of documents, or 0 for a text blob.
func (c *Corpus) DocCount() int {
	return len(c.docs)
}

// LineCount returns the number of lines in the corpus text.
func (c *Corpus) LineCount() int {
	if c.text == "" {
		return 0
	}
	return strings.Count(c.text, "\n") + 1
}

// Describe returns a one-line metadata summary for prompts.
func (c *Corpus) Describe() string {
	if c.IsDocumentList() {
		return fmt.Sprintf("%d documents, %d characters total", c.DocCount(), c.CharCount())
	}
	return fmt.Sprintf("%d characters, %d lines", c.CharCount(), c.LineCount())
}
