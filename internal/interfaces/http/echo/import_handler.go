package echo

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	app "github.com/mohammadpnp/customer-import/internal/application/importing"
	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

const templateFileName = "customer_import_template.xlsx"

type ImportHandler struct {
	start         app.StartImport
	upload        app.UploadChunk
	merge         app.MergeAndImport
	cleanup       app.CleanupUpload
	writeTemplate func(w io.Writer) error
}

type mergeChunksRequest struct {
	UploadID string `json:"upload_id"`
	FileName string `json:"file_name"`
}

type cleanupUploadRequest struct {
	UploadID string `json:"upload_id"`
}

func NewImportHandler(
	start app.StartImport,
	upload app.UploadChunk,
	merge app.MergeAndImport,
	cleanup app.CleanupUpload,
	writeTemplate func(w io.Writer) error,
) *ImportHandler {
	return &ImportHandler{
		start:         start,
		upload:        upload,
		merge:         merge,
		cleanup:       cleanup,
		writeTemplate: writeTemplate,
	}
}

// Import accepts a whole file in the multipart field "file" and answers 202
// with the task id to poll.
func (h *ImportHandler) Import(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "multipart field file is required")
	}

	src, err := fh.Open()
	if err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "failed to read uploaded file")
	}
	defer src.Close()

	out, err := h.start.Execute(c.Request().Context(), app.StartImportInput{
		FileName: fh.Filename,
		Size:     fh.Size,
		Body:     src,
		Actor:    actorOf(c),
	})
	if err != nil {
		return importError(c, err)
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: out})
}

func (h *ImportHandler) UploadChunk(c echo.Context) error {
	index, err := strconv.Atoi(c.FormValue("chunk_index"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid_chunk", "chunk_index must be an integer")
	}
	total, err := strconv.Atoi(c.FormValue("total_chunks"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid_chunk", "total_chunks must be an integer")
	}
	var totalSize int64
	if raw := c.FormValue("total_size"); raw != "" {
		totalSize, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return respondError(c, http.StatusBadRequest, "invalid_chunk", "total_size must be an integer")
		}
	}

	fh, err := c.FormFile("chunk")
	if err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "multipart field chunk is required")
	}
	src, err := fh.Open()
	if err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "failed to read chunk")
	}
	defer src.Close()

	out, err := h.upload.Execute(c.Request().Context(), app.UploadChunkInput{
		UploadID:    c.FormValue("upload_id"),
		ChunkIndex:  index,
		TotalChunks: total,
		FileName:    c.FormValue("file_name"),
		TotalSize:   totalSize,
		Body:        src,
	})
	if err != nil {
		return importError(c, err)
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *ImportHandler) MergeChunks(c echo.Context) error {
	var req mergeChunksRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	out, err := h.merge.Execute(c.Request().Context(), app.MergeChunksInput{
		UploadID: req.UploadID,
		FileName: req.FileName,
		Actor:    actorOf(c),
	})
	if err != nil {
		return importError(c, err)
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: out})
}

func (h *ImportHandler) CleanupUpload(c echo.Context) error {
	var req cleanupUploadRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	if err := h.cleanup.Execute(c.Request().Context(), app.CleanupUploadInput{UploadID: req.UploadID}); err != nil {
		return importError(c, err)
	}

	return c.JSON(http.StatusOK, apiResponse{Data: map[string]string{"upload_id": req.UploadID}})
}

func (h *ImportHandler) Template(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.writeTemplate(&buf); err != nil {
		return respondError(c, http.StatusInternalServerError, "internal_error", "failed to build template")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+templateFileName+`"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func actorOf(c echo.Context) app.Actor {
	return app.Actor{Username: usernameOf(c), ClientIP: c.RealIP()}
}

func importError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return respondError(c, http.StatusBadRequest, "unsupported_format", "only .csv, .xls and .xlsx files are accepted")
	case errors.Is(err, app.ErrEmptyImportFile):
		return respondError(c, http.StatusBadRequest, "empty_file", "uploaded file is empty")
	case errors.Is(err, app.ErrImportFileTooBig):
		return respondError(c, http.StatusRequestEntityTooLarge, "file_too_large", "uploaded file exceeds the size limit")
	case errors.Is(err, app.ErrInvalidImportFile):
		return respondError(c, http.StatusBadRequest, "invalid_file", "uploaded file could not be read")
	case errors.Is(err, domain.ErrInvalidUploadID):
		return respondError(c, http.StatusBadRequest, "invalid_upload_id", "upload_id must match [A-Za-z0-9_-]{1,128}")
	case errors.Is(err, domain.ErrInvalidChunk), errors.Is(err, domain.ErrChunkSessionChanged):
		return respondError(c, http.StatusBadRequest, "invalid_chunk", err.Error())
	case errors.Is(err, domain.ErrUploadNotFound):
		return respondError(c, http.StatusNotFound, "upload_not_found", "upload session not found")
	case errors.Is(err, domain.ErrUploadIncomplete):
		return respondError(c, http.StatusBadRequest, "upload_incomplete", err.Error())
	case errors.Is(err, domain.ErrUploadSizeMismatch):
		return respondError(c, http.StatusBadRequest, "size_mismatch", err.Error())
	case errors.Is(err, domain.ErrChunkMissing):
		return respondError(c, http.StatusBadRequest, "chunk_missing", err.Error())
	case errors.Is(err, app.ErrScheduleImport):
		return respondError(c, http.StatusServiceUnavailable, "unavailable", "import queue is shutting down")
	default:
		return respondError(c, http.StatusInternalServerError, "internal_error", "failed to accept import")
	}
}
