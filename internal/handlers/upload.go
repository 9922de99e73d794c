package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"

	"github.com/unilink-hq/placement-service/internal/services"
)

// openUpload opens a multipart file and sniffs its actual content type from
// the file bytes. The declared Content-Type header is ignored so a renamed
// executable cannot masquerade as a PDF.
func openUpload(fileHeader *multipart.FileHeader) (*services.ResumeUpload, func(), error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to detect file type: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	upload := &services.ResumeUpload{
		Filename:    fileHeader.Filename,
		ContentType: mtype.String(),
		Size:        fileHeader.Size,
		Content:     file,
	}
	return upload, func() { file.Close() }, nil
}
