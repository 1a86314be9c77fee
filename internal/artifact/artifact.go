// Package artifact persists fitted classifiers and vectorizers as gob files.
package artifact

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hyperjump/bunrui/internal/analysis"
	"github.com/hyperjump/bunrui/internal/classifier"
	"github.com/hyperjump/bunrui/internal/features"
)

// ErrBadFormat is returned when a file is not an artifact of the expected kind or version.
var ErrBadFormat = errors.New("unrecognized artifact format")

const (
	magic   = "bunrui"
	version = 1

	kindClassifier = "classifier"
	kindVectorizer = "vectorizer"
)

type header struct {
	Magic   string
	Kind    string
	Version int
}

func encode(w io.Writer, kind string, state interface{}) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(header{Magic: magic, Kind: kind, Version: version}); err != nil {
		return fmt.Errorf("encode %s header: %w", kind, err)
	}
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	return nil
}

func decode(r io.Reader, kind string, state interface{}) error {
	dec := gob.NewDecoder(r)
	var h header
	if err := dec.Decode(&h); err != nil {
		return fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if h.Magic != magic || h.Kind != kind {
		return fmt.Errorf("%w: want %s artifact, got magic=%q kind=%q", ErrBadFormat, kind, h.Magic, h.Kind)
	}
	if h.Version != version {
		return fmt.Errorf("%w: %s artifact version %d, want %d", ErrBadFormat, kind, h.Version, version)
	}
	if err := dec.Decode(state); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrBadFormat, kind, err)
	}
	return nil
}

// WriteClassifier encodes a fitted classifier to w.
func WriteClassifier(w io.Writer, m *classifier.MultinomialNB) error {
	state, err := m.State()
	if err != nil {
		return err
	}
	return encode(w, kindClassifier, state)
}

// ReadClassifier decodes a classifier written by WriteClassifier.
func ReadClassifier(r io.Reader) (*classifier.MultinomialNB, error) {
	var state classifier.ModelState
	if err := decode(r, kindClassifier, &state); err != nil {
		return nil, err
	}
	m, err := classifier.FromState(&state)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return m, nil
}

// WriteVectorizer encodes a fitted vectorizer to w.
func WriteVectorizer(w io.Writer, v *features.TfidfVectorizer) error {
	state, err := v.State()
	if err != nil {
		return err
	}
	return encode(w, kindVectorizer, state)
}

// ReadVectorizer decodes a vectorizer written by WriteVectorizer. The analyzer
// must be the one the vectorizer was fitted with.
func ReadVectorizer(r io.Reader, an *analysis.Analyzer) (*features.TfidfVectorizer, error) {
	var state features.VectorizerState
	if err := decode(r, kindVectorizer, &state); err != nil {
		return nil, err
	}
	v, err := features.FromState(&state, an)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return v, nil
}

// LoadClassifier reads the classifier artifact at path.
func LoadClassifier(path string) (*classifier.MultinomialNB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open classifier artifact: %w", err)
	}
	defer f.Close()
	m, err := ReadClassifier(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// LoadVectorizer reads the vectorizer artifact at path.
func LoadVectorizer(path string, an *analysis.Analyzer) (*features.TfidfVectorizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vectorizer artifact: %w", err)
	}
	defer f.Close()
	v, err := ReadVectorizer(f, an)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return v, nil
}

// SavePair writes both artifacts. Nothing is moved into place until both have
// been encoded and synced, so a failure leaves any previous pair untouched.
// The parent directories are created if they do not exist.
func SavePair(classifierPath string, m *classifier.MultinomialNB, vectorizerPath string, v *features.TfidfVectorizer) error {
	clsTmp, err := writeTemp(classifierPath, func(w io.Writer) error { return WriteClassifier(w, m) })
	if err != nil {
		return err
	}
	vecTmp, err := writeTemp(vectorizerPath, func(w io.Writer) error { return WriteVectorizer(w, v) })
	if err != nil {
		_ = os.Remove(clsTmp)
		return err
	}
	if err := os.Rename(clsTmp, classifierPath); err != nil {
		_ = os.Remove(clsTmp)
		_ = os.Remove(vecTmp)
		return fmt.Errorf("install classifier artifact: %w", err)
	}
	if err := os.Rename(vecTmp, vectorizerPath); err != nil {
		_ = os.Remove(vecTmp)
		return fmt.Errorf("install vectorizer artifact: %w", err)
	}
	return nil
}

func writeTemp(path string, write func(io.Writer) error) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	tmp := f.Name()
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("sync %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close %s: %w", tmp, err)
	}
	return tmp, nil
}
