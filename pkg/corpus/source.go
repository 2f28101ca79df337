/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: source.go
Description: Reference file sources. The default source memory-maps files read-only
so reference bytes are shared with the page cache instead of copied onto the heap.
HTML references can be reduced to their visible text before measurement.
*/

package corpus

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	mmap "github.com/blevesearch/mmap-go"
)

// Source loads the bytes of one reference file. The returned release function,
// when non-nil, frees the bytes and is called exactly once by the store.
type Source interface {
	Load(path string) (data []byte, release func() error, err error)
}

// MmapSource maps files read-only
type MmapSource struct{}

// Load maps the file at path
func (MmapSource) Load(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if info.Size() == 0 {
		// zero-length mappings are rejected by the kernel
		return []byte{}, nil, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap: %w", err)
	}
	return m, m.Unmap, nil
}

// ReadFileSource reads files fully onto the heap
type ReadFileSource struct{}

// Load reads the file at path
func (ReadFileSource) Load(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	return data, nil, err
}

func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// extractText returns the visible text of an HTML document, one block per line
func extractText(data []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	doc.Find("script, style, noscript, head").Remove()

	var out bytes.Buffer
	doc.Find("body").Find("h1, h2, h3, h4, h5, h6, p, li, td, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li, td, blockquote, pre").Length() > 0 {
			return // text is emitted by the inner block
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		out.WriteString(text)
		out.WriteByte('\n')
	})

	if out.Len() == 0 {
		text := strings.Join(strings.Fields(doc.Text()), " ")
		out.WriteString(text)
	}
	return out.Bytes(), nil
}
