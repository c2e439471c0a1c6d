package processor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go-pdftools/internal/pdferr"
)

// File is a read-only handle on one input document.
type File interface {
	Name() string
	Size() int64
	Bytes() ([]byte, error)
}

type memFile struct {
	name string
	data []byte
}

// NewFile wraps in-memory bytes as a File.
func NewFile(name string, data []byte) File {
	return &memFile{name: name, data: data}
}

func (f *memFile) Name() string           { return f.name }
func (f *memFile) Size() int64            { return int64(len(f.data)) }
func (f *memFile) Bytes() ([]byte, error) { return f.data, nil }

type diskFile struct {
	path string
	size int64

	once sync.Once
	data []byte
	err  error
}

// OpenFile returns a File backed by path. The content is read on first use.
func OpenFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &diskFile{path: path, size: info.Size()}, nil
}

func (f *diskFile) Name() string { return filepath.Base(f.path) }
func (f *diskFile) Size() int64  { return f.size }

func (f *diskFile) Bytes() ([]byte, error) {
	f.once.Do(func() {
		f.data, f.err = os.ReadFile(f.path)
	})
	return f.data, f.err
}

// ReadAll loads every file, failing on the first unreadable one.
func ReadAll(files []File) ([][]byte, error) {
	out := make([][]byte, len(files))
	for i, f := range files {
		data, err := f.Bytes()
		if err != nil {
			return nil, pdferr.Wrap(pdferr.FileReadFailed, fmt.Errorf("%s: %w", f.Name(), err), nil)
		}
		out[i] = data
	}
	return out, nil
}

var pdfMagic = []byte("%PDF-")

// LooksLikePDF checks the header bytes, allowing leading garbage within the
// first kilobyte as PDF readers do.
func LooksLikePDF(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, pdfMagic)
}

// HasPDFExtension reports whether name ends in .pdf, case-insensitively.
func HasPDFExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
