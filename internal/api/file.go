package api

import (
	"errors"
	"fmt"
	"io"
)

// ErrFileTooLarge is returned when an uploaded file exceeds the size cap.
var ErrFileTooLarge = errors.New("file too large")

// ReadLocalFile reads a user-supplied file of at most maxBytes.
func ReadLocalFile(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, maxBytes)
	}
	return data, nil
}
