// Package files stores supporting PDF documents on the local disk.
package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"skyvision-booking/pkg/response"
)

const (
	pdfMIME = "application/pdf"
	ext     = ".pdf"

	sniffLen = 3072
)

type Local struct {
	dir      string
	maxBytes int64
}

func NewLocal(dir string, maxBytes int64) (*Local, error) {
	const op = "files.NewLocal"

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Local{dir: dir, maxBytes: maxBytes}, nil
}

// Save writes r under a generated name and returns that name. Content that does
// not sniff as PDF is refused with response.ErrUnsupportedMedia, content above the
// size limit with response.ErrTooLarge.
func (l *Local) Save(ctx context.Context, r io.Reader) (string, error) {
	const op = "files.Local.Save"

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	head = head[:n]

	if !mimetype.Detect(head).Is(pdfMIME) {
		return "", fmt.Errorf("%s: %w", op, response.ErrUnsupportedMedia)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(l.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	src := io.MultiReader(bytes.NewReader(head), r)
	if l.maxBytes > 0 {
		src = io.LimitReader(src, l.maxBytes+1)
	}

	written, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err == nil && l.maxBytes > 0 && written > l.maxBytes {
		err = response.ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return name, nil
}

func (l *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	const op = "files.Local.Open"

	path, err := l.path(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return f, nil
}

// Remove deletes name. A file that is already gone is not an error.
func (l *Local) Remove(_ context.Context, name string) error {
	const op = "files.Local.Remove"

	path, err := l.path(name)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// path only accepts names Save generated.
func (l *Local) path(name string) (string, error) {
	id, ok := strings.CutSuffix(name, ext)
	if !ok {
		return "", response.ErrNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", response.ErrNotFound
	}

	return filepath.Join(l.dir, name), nil
}
