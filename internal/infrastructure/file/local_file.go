package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

var ErrTooLarge = domain.ErrFileTooLarge

// LocalFile is a file on local disk that keeps the name it was uploaded under.
type LocalFile struct {
	Path     string
	FileName string
}

func NewLocalFile(path, fileName string) *LocalFile {
	if fileName == "" {
		fileName = filepath.Base(path)
	}
	return &LocalFile{Path: path, FileName: fileName}
}

func (f *LocalFile) Name() string {
	return f.FileName
}

func (f *LocalFile) Open() (io.ReadCloser, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", f.Path, err)
	}
	return file, nil
}

// Remove deletes the file. A file that is already gone is not an error.
func (f *LocalFile) Remove() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file %s: %w", f.Path, err)
	}
	return nil
}

// Spooler copies request bodies to local disk so they outlive the request
// that carried them.
type Spooler struct {
	BaseDir string
}

func NewSpooler(baseDir string) *Spooler {
	if baseDir == "" {
		baseDir = "."
	}
	return &Spooler{BaseDir: baseDir}
}

// Spool writes r to a new file under BaseDir. It fails with ErrTooLarge once
// more than limit bytes are read; limit <= 0 disables the check.
func (s *Spooler) Spool(ctx context.Context, fileName string, r io.Reader, limit int64) (domain.StoredFile, int64, error) {
	if err := os.MkdirAll(s.BaseDir, 0o755); err != nil {
		return nil, 0, fmt.Errorf("create spool dir: %w", err)
	}

	path := filepath.Join(s.BaseDir, uuid.NewString()+"_"+filepath.Base(fileName))
	out, err := os.Create(path)
	if err != nil {
		return nil, 0, fmt.Errorf("create spool file: %w", err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	written, copyErr := io.Copy(out, &contextReader{ctx: ctx, r: src})
	closeErr := out.Close()

	local := NewLocalFile(path, fileName)
	switch {
	case copyErr != nil:
		_ = local.Remove()
		return nil, written, fmt.Errorf("spool %s: %w", fileName, copyErr)
	case closeErr != nil:
		_ = local.Remove()
		return nil, written, fmt.Errorf("close spool file: %w", closeErr)
	case limit > 0 && written > limit:
		_ = local.Remove()
		return nil, written, ErrTooLarge
	}

	return local, written, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
