package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ironsheep/image-grayscale/internal/imaging"
)

// MIMEImagePNG is the content type of every successful /filter response.
const MIMEImagePNG = "image/png"

// handleFilter reads a multipart upload, desaturates it and returns a PNG.
func (s *Server) handleFilter(c echo.Context) error {
	data, err := readUpload(c.Request())
	if err != nil {
		return err
	}

	out, info, err := imaging.Filter(data, s.cfg.Upload.MaxPixels)
	if err != nil {
		return err
	}

	s.log.Debug().
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Str("format", info.Format).
		Int("width", info.Width).
		Int("height", info.Height).
		Int("in_bytes", info.SizeBytes).
		Int("out_bytes", len(out)).
		Msg("filtered image")

	return c.Blob(http.StatusOK, MIMEImagePNG, out)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// readUpload concatenates the bytes of every part of a multipart body, in
// arrival order and without regard to field names.
func readUpload(r *http.Request) ([]byte, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedUpload, err)
	}

	var buf bytes.Buffer
	for {
		part, err := mr.NextPart()
		// A clean end is a bare io.EOF; a body cut short before the
		// closing boundary comes back wrapped.
		if err == io.EOF { //nolint:errorlint
			break
		}
		if err != nil {
			return nil, uploadError(err)
		}

		_, err = io.Copy(&buf, part)
		part.Close()
		if err != nil {
			return nil, uploadError(err)
		}
	}

	return buf.Bytes(), nil
}

// uploadError keeps echo's body-limit error intact so it maps to 413, and
// classifies everything else as a malformed upload.
func uploadError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return fmt.Errorf("%w: %v", ErrMalformedUpload, err)
}
