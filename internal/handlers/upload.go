package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"go-pdftools/internal/pdferr"
	"go-pdftools/internal/processor"
	"go-pdftools/internal/processors"
	"go-pdftools/internal/utils"
)

const memoryLimit = 32 << 20

// named gives a spooled file back its uploaded name.
type named struct {
	processor.File
	name string
}

func (n named) Name() string { return n.name }

// readUpload parses the multipart body into a processor input. Files come
// from the "files" fields followed by "file". With spool set the files are
// written to UploadDir and their paths are returned for cleanup.
func (h *APIHandler) readUpload(w http.ResponseWriter, r *http.Request, tool processors.Tool, spool bool) (processor.Input, []string, []string, error) {
	var in processor.Input

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize*int64(h.MaxFiles)+memoryLimit)
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, nil, nil, pdferr.New(pdferr.FileTooLarge, "request body too large",
				pdferr.Params{"maxSize": processor.FormatSize(h.MaxUploadSize)})
		}
		return in, nil, nil, pdferr.Wrap(pdferr.InvalidOptions, fmt.Errorf("malformed multipart body: %w", err), nil)
	}
	defer r.MultipartForm.RemoveAll()

	var headers []*multipart.FileHeader
	headers = append(headers, r.MultipartForm.File["files"]...)
	headers = append(headers, r.MultipartForm.File["file"]...)
	if len(headers) == 0 {
		return in, nil, nil, pdferr.New(pdferr.InvalidOptions, "no files provided", nil)
	}
	maxFiles := h.MaxFiles
	if !tool.MultiFile {
		maxFiles = 1
	}
	if len(headers) > maxFiles {
		return in, nil, nil, pdferr.New(pdferr.TooManyFiles, "", pdferr.Params{"maxFiles": maxFiles})
	}

	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Options); err != nil {
			return in, nil, nil, pdferr.Wrap(pdferr.InvalidOptions, fmt.Errorf("options: %w", err), nil)
		}
	}

	var names, paths []string
	for _, fh := range headers {
		f, path, err := h.readFile(fh, spool)
		if path != "" {
			paths = append(paths, path)
		}
		if err != nil {
			removeAll(paths)
			return in, nil, nil, err
		}
		in.Files = append(in.Files, f)
		names = append(names, f.Name())
	}
	return in, names, paths, nil
}

func (h *APIHandler) readFile(fh *multipart.FileHeader, spool bool) (processor.File, string, error) {
	name := utils.SanitizeFilename(filepath.Base(fh.Filename))
	if !processor.HasPDFExtension(name) {
		return nil, "", pdferr.New(pdferr.FileNotPDF, name, nil)
	}
	if fh.Size > h.MaxUploadSize {
		return nil, "", pdferr.New(pdferr.FileTooLarge, name, pdferr.Params{"maxSize": processor.FormatSize(h.MaxUploadSize)})
	}

	file, err := fh.Open()
	if err != nil {
		return nil, "", pdferr.Wrap(pdferr.FileReadFailed, err, nil)
	}
	defer file.Close()

	header := make([]byte, 1024)
	n, err := io.ReadFull(file, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", pdferr.Wrap(pdferr.FileReadFailed, err, nil)
	}
	if n > 0 && !processor.LooksLikePDF(header[:n]) {
		return nil, "", pdferr.New(pdferr.FileNotPDF, name, nil)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, "", pdferr.Wrap(pdferr.FileReadFailed, err, nil)
	}

	if !spool {
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", pdferr.Wrap(pdferr.FileReadFailed, err, nil)
		}
		return processor.NewFile(name, data), "", nil
	}

	path := filepath.Join(h.UploadDir, fmt.Sprintf("%s-%s", utils.GenerateUUID(), name))
	dst, err := os.Create(path)
	if err != nil {
		return nil, "", pdferr.Wrap(pdferr.FileReadFailed, err, nil)
	}
	_, err = io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, path, pdferr.Wrap(pdferr.FileReadFailed, err, nil)
	}
	disk, err := processor.OpenFile(path)
	if err != nil {
		return nil, path, pdferr.Wrap(pdferr.FileReadFailed, err, nil)
	}
	return named{File: disk, name: name}, path, nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}
