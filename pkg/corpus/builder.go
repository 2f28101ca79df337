/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: builder.go
Description: In-memory store construction for embedding hosts that receive reference
texts as strings or byte slices instead of reading a directory.
*/

package corpus

import (
	"context"
	"runtime"

	"github.com/kleascm/langfilter/pkg/compression"
	"golang.org/x/sync/errgroup"
)

type pendingDocument struct {
	id   string
	data []byte
}

// Builder collects named reference texts. Adding an existing id replaces its text.
type Builder struct {
	adapter *compression.Adapter
	pending []pendingDocument
	index   map[string]int
}

// NewBuilder creates a builder measuring documents with adapter
func NewBuilder(adapter *compression.Adapter) *Builder {
	return &Builder{
		adapter: adapter,
		index:   make(map[string]int),
	}
}

// AddBytes adds a reference document; data is copied
func (b *Builder) AddBytes(id string, data []byte) *Builder {
	owned := append([]byte(nil), data...)
	if i, ok := b.index[id]; ok {
		b.pending[i].data = owned
		return b
	}
	b.index[id] = len(b.pending)
	b.pending = append(b.pending, pendingDocument{id: id, data: owned})
	return b
}

// AddString adds a reference document from text
func (b *Builder) AddString(id, text string) *Builder {
	return b.AddBytes(id, []byte(text))
}

// Len returns the number of distinct ids added so far
func (b *Builder) Len() int {
	return len(b.pending)
}

// Build measures every document and freezes the store
func (b *Builder) Build(ctx context.Context) (*Store, error) {
	if len(b.pending) == 0 {
		return nil, ErrNoReferenceFiles
	}

	docs := make([]*ReferenceDocument, len(b.pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.GOMAXPROCS(0), len(b.pending)))
	for i, p := range b.pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := newDocument(p.id, "", p.data, nil, b.adapter)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return newStore(b.adapter, docs, nil)
}
