package chunk

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
	infrafile "github.com/mohammadpnp/customer-import/internal/infrastructure/file"
)

var uploadIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

type session struct {
	fileName    string
	totalSize   int64
	totalChunks int
	received    map[int]int64
	bytes       int64
}

// limit is the most bytes the upload may hold: the declared total size when
// one was given, never more than maxFileSize.
func (s *session) limit(maxFileSize int64) int64 {
	if s.totalSize > 0 && (maxFileSize <= 0 || s.totalSize < maxFileSize) {
		return s.totalSize
	}
	return maxFileSize
}

// Assembler keeps chunked uploads on disk under dir/<uploadID>/ until they are
// merged. Sessions live in memory only. A maxFileSize of 0 or less leaves
// uploads bounded by their declared size only.
type Assembler struct {
	dir         string
	maxFileSize int64
	log         zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session

	afterWrite func(uploadID string)
}

func NewAssembler(dir string, maxFileSize int64, log zerolog.Logger) (*Assembler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}
	return &Assembler{
		dir:         dir,
		maxFileSize: maxFileSize,
		log:         log,
		sessions:    make(map[string]*session),
	}, nil
}

// SaveChunk stores one chunk. Chunks may arrive in any order; sending the same
// index twice replaces the earlier payload. The bytes actually received count
// against the upload's size limit, not the declared sizes.
func (a *Assembler) SaveChunk(part domain.ChunkPart, body io.Reader) (domain.ChunkProgress, error) {
	if !uploadIDPattern.MatchString(part.UploadID) {
		return domain.ChunkProgress{}, domain.ErrInvalidUploadID
	}
	if part.TotalChunks <= 0 || part.Index < 0 || part.Index >= part.TotalChunks {
		return domain.ChunkProgress{}, fmt.Errorf("%w: index %d of %d", domain.ErrInvalidChunk, part.Index, part.TotalChunks)
	}

	a.mu.Lock()
	s, ok := a.sessions[part.UploadID]
	if !ok {
		s = &session{
			fileName:    part.FileName,
			totalSize:   part.TotalSize,
			totalChunks: part.TotalChunks,
			received:    make(map[int]int64, part.TotalChunks),
		}
		a.sessions[part.UploadID] = s
	} else if err := s.matches(part); err != nil {
		a.mu.Unlock()
		return domain.ChunkProgress{}, err
	}
	limit := s.limit(a.maxFileSize)
	allowed := int64(-1)
	if limit > 0 {
		allowed = limit - (s.bytes - s.received[part.Index])
	}
	a.mu.Unlock()

	written, err := a.writeChunk(part.UploadID, part.Index, body, allowed)
	if err != nil {
		return domain.ChunkProgress{}, err
	}
	if a.afterWrite != nil {
		a.afterWrite(part.UploadID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	// the session may have been cleaned up while the chunk was written
	s, ok = a.sessions[part.UploadID]
	if !ok {
		a.discardChunk(part.UploadID, part.Index)
		return domain.ChunkProgress{}, domain.ErrUploadNotFound
	}

	total := s.bytes - s.received[part.Index] + written
	if limit > 0 && total > limit {
		a.discardChunk(part.UploadID, part.Index)
		if _, kept := s.received[part.Index]; kept {
			s.bytes -= s.received[part.Index]
			delete(s.received, part.Index)
		}
		return domain.ChunkProgress{}, fmt.Errorf("%w: upload holds %d bytes, limit %d", domain.ErrFileTooLarge, total, limit)
	}
	s.bytes = total
	s.received[part.Index] = written

	return domain.ChunkProgress{UploadID: part.UploadID, Received: len(s.received), Total: s.totalChunks}, nil
}

func (s *session) matches(part domain.ChunkPart) error {
	switch {
	case s.totalChunks != part.TotalChunks:
		return fmt.Errorf("%w: total chunks %d, session has %d", domain.ErrChunkSessionChanged, part.TotalChunks, s.totalChunks)
	case s.fileName != part.FileName:
		return fmt.Errorf("%w: file name %q, session has %q", domain.ErrChunkSessionChanged, part.FileName, s.fileName)
	case s.totalSize != part.TotalSize:
		return fmt.Errorf("%w: total size %d, session has %d", domain.ErrChunkSessionChanged, part.TotalSize, s.totalSize)
	}
	return nil
}

// writeChunk stores the chunk and returns its size. A non-negative allowed
// caps the chunk; a larger body fails with ErrFileTooLarge before it is kept.
func (a *Assembler) writeChunk(uploadID string, index int, body io.Reader, allowed int64) (int64, error) {
	uploadDir := a.uploadDir(uploadID)
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return 0, fmt.Errorf("create upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(uploadDir, "partial_*")
	if err != nil {
		return 0, fmt.Errorf("create chunk temp file: %w", err)
	}

	src := body
	if allowed >= 0 {
		src = io.LimitReader(body, allowed+1)
	}
	written, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("write chunk %d: %w", index, err)
	}
	if allowed >= 0 && written > allowed {
		tmp.Close()
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("%w: chunk %d exceeds the remaining %d bytes", domain.ErrFileTooLarge, index, allowed)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("close chunk %d: %w", index, err)
	}
	if err := os.Rename(tmp.Name(), a.chunkPath(uploadID, index)); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("store chunk %d: %w", index, err)
	}
	return written, nil
}

// discardChunk removes a chunk that no session accounts for, and the upload
// directory when nothing else is left in it.
func (a *Assembler) discardChunk(uploadID string, index int) {
	if err := os.Remove(a.chunkPath(uploadID, index)); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.log.Warn().Err(err).Str("upload_id", uploadID).Int("chunk_index", index).Msg("failed to delete discarded chunk")
	}
	if _, ok := a.sessions[uploadID]; !ok {
		os.Remove(a.uploadDir(uploadID))
	}
}

func (a *Assembler) IsComplete(uploadID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[uploadID]
	return ok && len(s.received) == s.totalChunks
}

// Merge concatenates the chunks in index order into one file and drops the
// session. Each chunk is deleted once copied.
func (a *Assembler) Merge(uploadID string) (domain.StoredFile, error) {
	a.mu.Lock()
	s, ok := a.sessions[uploadID]
	if !ok {
		a.mu.Unlock()
		return nil, domain.ErrUploadNotFound
	}
	if len(s.received) != s.totalChunks {
		received, total := len(s.received), s.totalChunks
		a.mu.Unlock()
		return nil, fmt.Errorf("%w: received %d of %d", domain.ErrUploadIncomplete, received, total)
	}
	fileName, totalChunks, totalSize := s.fileName, s.totalChunks, s.totalSize
	delete(a.sessions, uploadID)
	a.mu.Unlock()

	mergedPath := filepath.Join(a.uploadDir(uploadID), "merged_"+filepath.Base(fileName))
	out, err := os.Create(mergedPath)
	if err != nil {
		return nil, fmt.Errorf("create merged file: %w", err)
	}

	var merged int64
	for i := 0; i < totalChunks; i++ {
		n, err := a.appendChunk(out, uploadID, i)
		if err != nil {
			out.Close()
			os.Remove(mergedPath)
			return nil, err
		}
		merged += n
	}

	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("close merged file: %w", err)
	}
	if totalSize > 0 && merged != totalSize {
		os.Remove(mergedPath)
		return nil, fmt.Errorf("%w: merged %d bytes, declared %d", domain.ErrUploadSizeMismatch, merged, totalSize)
	}

	a.log.Info().Str("upload_id", uploadID).Int("chunks", totalChunks).Msg("chunks merged")
	return infrafile.NewLocalFile(mergedPath, fileName), nil
}

func (a *Assembler) appendChunk(out io.Writer, uploadID string, index int) (int64, error) {
	path := a.chunkPath(uploadID, index)
	in, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: index %d", domain.ErrChunkMissing, index)
		}
		return 0, fmt.Errorf("open chunk %d: %w", index, err)
	}

	n, copyErr := io.Copy(out, in)
	in.Close()
	if copyErr != nil {
		return 0, fmt.Errorf("copy chunk %d: %w", index, copyErr)
	}

	if err := os.Remove(path); err != nil {
		a.log.Warn().Err(err).Str("upload_id", uploadID).Int("chunk_index", index).Msg("failed to delete merged chunk")
	}
	return n, nil
}

// Cleanup forgets the session and removes every file of the upload. Unknown
// ids are a no-op.
func (a *Assembler) Cleanup(uploadID string) error {
	if !uploadIDPattern.MatchString(uploadID) {
		return domain.ErrInvalidUploadID
	}

	a.mu.Lock()
	delete(a.sessions, uploadID)
	a.mu.Unlock()

	if err := os.RemoveAll(a.uploadDir(uploadID)); err != nil {
		return fmt.Errorf("remove upload %s: %w", uploadID, err)
	}
	return nil
}

// Close removes all in-flight uploads.
func (a *Assembler) Close() error {
	a.mu.Lock()
	ids := make([]string, 0, len(a.sessions))
	for id := range a.sessions {
		ids = append(ids, id)
	}
	a.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := a.Cleanup(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Assembler) uploadDir(uploadID string) string {
	return filepath.Join(a.dir, uploadID)
}

func (a *Assembler) chunkPath(uploadID string, index int) string {
	return filepath.Join(a.uploadDir(uploadID), "chunk_"+strconv.Itoa(index))
}
