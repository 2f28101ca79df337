/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: store.go
Description: Reference corpus store for langfilter. Loads one reference document per
language from a directory, applies sparsity subsampling with explicit inclusion
overrides, measures every document in parallel and exposes the frozen, read-only set
together with the mean compressed length used for length-bias correction.
*/

package corpus

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/kleascm/langfilter/pkg/compression"
	"github.com/kleascm/langfilter/pkg/logging"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"
)

// Options controls which reference files are loaded and how
type Options struct {
	// Sparsity keeps every Sparsity-th file in directory order. Values below 1 keep all files.
	Sparsity int
	// DesiredLanguage is always loaded regardless of sparsity
	DesiredLanguage string
	// AlsoInclude is a comma-separated list of identifiers always loaded regardless of sparsity
	AlsoInclude string
	// Workers bounds load parallelism; 0 means GOMAXPROCS
	Workers int
	// ExtractHTML reduces .html/.htm references to their visible text
	ExtractHTML bool
	// Source loads file bytes; nil means MmapSource
	Source Source
	// Logger receives load progress and skipped-file warnings
	Logger logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.Sparsity < 1 {
		o.Sparsity = 1
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Source == nil {
		o.Source = MmapSource{}
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// ParseList splits a comma-separated identifier list, trimming blanks
func ParseList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// alwaysInclude reports whether path is named by the desired language or the include list.
// Names match either the file name or the full path.
func (o Options) alwaysInclude(path string, include map[string]struct{}) bool {
	base := filepath.Base(path)
	if o.DesiredLanguage != "" && (o.DesiredLanguage == base || o.DesiredLanguage == path) {
		return true
	}
	_, byBase := include[base]
	_, byPath := include[path]
	return byBase || byPath
}

// Store is the frozen set of reference documents.
// It is safe for concurrent readers; nothing mutates it after construction.
type Store struct {
	adapter   *compression.Adapter
	documents []*ReferenceDocument
	index     map[string]int
	mean      float64
	skipped   []*ReferenceLoadError

	closeOnce sync.Once
	closeErr  error
}

// Load builds a store from the regular files directly under dir
func Load(ctx context.Context, dir string, adapter *compression.Adapter, opts Options) (*Store, error) {
	opts = opts.withDefaults()
	log := opts.Logger.WithField("references", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoReferenceFiles, err)
	}

	include := make(map[string]struct{})
	for _, name := range ParseList(opts.AlsoInclude) {
		include[name] = struct{}{}
	}

	var selected []string
	for i, path := range regularFiles(dir, entries) {
		if i%opts.Sparsity == 0 || opts.alwaysInclude(path, include) {
			selected = append(selected, path)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoReferenceFiles, dir)
	}

	log.WithFields(logrus.Fields{
		"selected": len(selected),
		"sparsity": opts.Sparsity,
		"codec":    adapter.Codec().Name(),
	}).Debug("Loading reference corpus")

	// slots are indexed by position so workers never share a write target
	docs := make([]*ReferenceDocument, len(selected))
	failures := make([]*ReferenceLoadError, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Workers, len(selected)))
	for i, path := range selected {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := loadDocument(path, adapter, opts)
			if err != nil {
				failures[i] = &ReferenceLoadError{Path: path, Err: err}
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		releaseAll(docs)
		return nil, err
	}

	var loaded []*ReferenceDocument
	var skipped []*ReferenceLoadError
	for i := range selected {
		if failures[i] != nil {
			log.WithField("path", failures[i].Path).WithError(failures[i].Err).Warn("Reference skipped")
			skipped = append(skipped, failures[i])
			continue
		}
		loaded = append(loaded, docs[i])
	}

	store, err := newStore(adapter, loaded, skipped)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, dir)
	}
	store.logSummary(log)
	return store, nil
}

// regularFiles lists the non-directory children of dir in name order.
// Symlinks count when they resolve to regular files.
func regularFiles(dir string, entries []fs.DirEntry) []string {
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		mode := entry.Type()
		switch {
		case mode.IsRegular():
			files = append(files, path)
		case mode&fs.ModeSymlink != 0:
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				files = append(files, path)
			}
		}
	}
	return files
}

func loadDocument(path string, adapter *compression.Adapter, opts Options) (*ReferenceDocument, error) {
	data, release, err := opts.Source.Load(path)
	if err != nil {
		return nil, err
	}

	if opts.ExtractHTML && isHTML(path) {
		text, err := extractText(data)
		if release != nil {
			if rerr := release(); rerr != nil && err == nil {
				err = rerr
			}
		}
		if err != nil {
			return nil, err
		}
		data, release = text, nil
	}

	doc, err := newDocument(filepath.Base(path), path, data, release, adapter)
	if err != nil {
		if release != nil {
			release()
		}
		return nil, err
	}
	return doc, nil
}

// newStore freezes documents in the given order; later duplicates of an id replace earlier ones
func newStore(adapter *compression.Adapter, documents []*ReferenceDocument, skipped []*ReferenceLoadError) (*Store, error) {
	s := &Store{
		adapter: adapter,
		index:   make(map[string]int, len(documents)),
		skipped: skipped,
	}
	for _, doc := range documents {
		if i, exists := s.index[doc.ID]; exists {
			s.documents[i].close()
			s.documents[i] = doc
			continue
		}
		s.index[doc.ID] = len(s.documents)
		s.documents = append(s.documents, doc)
	}
	if len(s.documents) == 0 {
		return nil, ErrNoReferenceFiles
	}

	total := 0
	for _, doc := range s.documents {
		total += doc.CompressedLength
	}
	s.mean = float64(total) / float64(len(s.documents))
	return s, nil
}

func (s *Store) logSummary(log logrus.FieldLogger) {
	var raw, compressed uint64
	for _, doc := range s.documents {
		raw += uint64(doc.Size())
		compressed += uint64(doc.CompressedLength)
		log.WithFields(logrus.Fields{
			"language":          doc.ID,
			"size":              humanize.Bytes(uint64(doc.Size())),
			"compressed_length": doc.CompressedLength,
		}).Debug("Reference loaded")
	}

	for _, group := range s.Duplicates() {
		log.WithField("languages", strings.Join(group, ",")).Warn("Reference documents have identical contents")
	}

	log.WithFields(logrus.Fields{
		"documents":   len(s.documents),
		"skipped":     len(s.skipped),
		"size":        humanize.Bytes(raw),
		"compressed":  humanize.Bytes(compressed),
		"mean":        fmt.Sprintf("%.1f", s.mean),
		"fingerprint": s.Fingerprint()[:16],
	}).Info("Reference corpus loaded")
}

// Adapter returns the compressor adapter documents were measured with
func (s *Store) Adapter() *compression.Adapter {
	return s.adapter
}

// Len returns the number of loaded documents
func (s *Store) Len() int {
	return len(s.documents)
}

// Documents returns the documents in load order. The slice must not be modified.
func (s *Store) Documents() []*ReferenceDocument {
	return s.documents
}

// Document returns the document with the given identifier
func (s *Store) Document(id string) (*ReferenceDocument, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.documents[i], true
}

// Resolve maps a language name given as identifier or path to a loaded identifier
func (s *Store) Resolve(name string) (string, bool) {
	if _, ok := s.index[name]; ok {
		return name, true
	}
	for _, doc := range s.documents {
		if doc.Path != "" && doc.Path == name {
			return doc.ID, true
		}
	}
	if _, ok := s.index[filepath.Base(name)]; ok {
		return filepath.Base(name), true
	}
	return "", false
}

// MeanCompressedLength returns the arithmetic mean of all documents' compressed lengths
func (s *Store) MeanCompressedLength() float64 {
	return s.mean
}

// Skipped returns the reference files that failed to load
func (s *Store) Skipped() []*ReferenceLoadError {
	return s.skipped
}

// Duplicates groups identifiers whose documents have identical contents
func (s *Store) Duplicates() [][]string {
	byDigest := make(map[[32]byte][]string)
	var order [][32]byte
	for _, doc := range s.documents {
		if _, seen := byDigest[doc.Digest]; !seen {
			order = append(order, doc.Digest)
		}
		byDigest[doc.Digest] = append(byDigest[doc.Digest], doc.ID)
	}

	var groups [][]string
	for _, digest := range order {
		if ids := byDigest[digest]; len(ids) > 1 {
			groups = append(groups, ids)
		}
	}
	return groups
}

// Fingerprint identifies the loaded corpus: ids, contents and codec
func (s *Store) Fingerprint() string {
	h := blake3.New()
	h.Write([]byte(s.adapter.Codec().Name()))
	for _, doc := range s.documents {
		h.Write([]byte{0})
		h.Write([]byte(doc.ID))
		h.Write([]byte{0})
		h.Write(doc.Digest[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Close releases mapped reference bytes. Documents must not be used afterwards.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = releaseAll(s.documents)
	})
	return s.closeErr
}

func releaseAll(docs []*ReferenceDocument) error {
	var errs []error
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if err := doc.close(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", doc.ID, err))
		}
	}
	return errors.Join(errs...)
}
