package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ironsheep/image-grayscale/internal/imaging"
)

// ErrMalformedUpload covers a body that is not multipart/form-data, has broken
// framing, or ends before its closing boundary.
var ErrMalformedUpload = errors.New("malformed multipart upload")

// statusFor maps a handler error to the status code and body sent to the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMalformedUpload):
		return http.StatusBadRequest, "Malformed multipart upload"
	case errors.Is(err, imaging.ErrInvalidImage):
		return http.StatusBadRequest, "Invalid image data"
	case errors.Is(err, imaging.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "Image dimensions too large"
	case errors.Is(err, imaging.ErrEncode):
		return http.StatusInternalServerError, "Failed to encode image"
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

// handleError is the echo HTTPErrorHandler. It writes a plain-text body and
// logs server-side failures with their full cause.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error().Err(err).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Str("uri", c.Request().RequestURI).
			Msg("request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.String(code, msg)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to write error response")
	}
}
