package customer

import "errors"

var (
	ErrInvalidUploadID     = errors.New("invalid upload id")
	ErrInvalidChunk        = errors.New("invalid chunk")
	ErrChunkSessionChanged = errors.New("chunk does not match upload session")
	ErrUploadNotFound      = errors.New("upload session not found")
	ErrUploadIncomplete    = errors.New("upload is missing chunks")
	ErrChunkMissing        = errors.New("chunk file missing")
	ErrUploadSizeMismatch  = errors.New("merged size does not match declared total size")
)

// ChunkPart describes one uploaded chunk and the file it belongs to.
type ChunkPart struct {
	UploadID    string
	Index       int
	TotalChunks int
	FileName    string
	TotalSize   int64
}

// ChunkProgress is the state of an upload session after a chunk was stored.
type ChunkProgress struct {
	UploadID string
	Received int
	Total    int
}

func (p ChunkProgress) Complete() bool {
	return p.Received == p.Total
}
