package document

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Walker expands invoice archives and discovers the PDFs inside them.
// Nested archives are expanded recursively with no depth limit; the caller
// must guarantee the archive graph is acyclic.
type Walker struct {
	logger *zap.Logger
}

// NewWalker creates a new archive walker
func NewWalker(logger *zap.Logger) *Walker {
	return &Walker{logger: logger}
}

// ExtractAndFindPDFs expands the archive at archivePath into outDir and
// returns the absolute paths of every PDF found, including PDFs inside
// nested archives. Discovery is by file extension only, case-insensitive.
func (w *Walker) ExtractAndFindPDFs(archivePath, outDir string) ([]string, error) {
	if err := w.extract(archivePath, outDir); err != nil {
		return nil, fmt.Errorf("failed to extract archive %s: %w", archivePath, err)
	}
	return w.scan(outDir)
}

// scan walks dir collecting PDFs and expanding nested archives into
// deterministically named sibling directories.
func (w *Walker) scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var pdfs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			nested, err := w.scan(path)
			if err != nil {
				return nil, err
			}
			pdfs = append(pdfs, nested...)
			continue
		}

		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf":
			pdfs = append(pdfs, path)
		case ".zip":
			base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			nestedDir := filepath.Join(dir, "nested_"+base)
			if err := os.MkdirAll(nestedDir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory for nested archive: %w", err)
			}
			if err := w.extract(path, nestedDir); err != nil {
				return nil, fmt.Errorf("failed to extract nested archive %s: %w", path, err)
			}
			w.logger.Debug("Expanded nested archive", zap.String("archive", path))
			nested, err := w.scan(nestedDir)
			if err != nil {
				return nil, err
			}
			pdfs = append(pdfs, nested...)
		}
	}

	return pdfs, nil
}

// extract unpacks a zip archive into destDir, rejecting entry names that
// would escape it.
func (w *Walker) extract(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		target := filepath.Join(destDir, file.Name)
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes extraction directory: %s", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", target, err)
		}
		if err := w.writeEntry(file, target); err != nil {
			return err
		}
	}

	return nil
}

func (w *Walker) writeEntry(file *zip.File, target string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", file.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}
