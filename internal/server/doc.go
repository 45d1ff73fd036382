// Package server implements the HTTP front end of the grayscale service.
//
// The server is built on echo and exposes two routes:
//   - POST /filter: accepts a multipart/form-data upload, returns a grayscale PNG
//   - GET /healthz: liveness probe, returns "ok"
//
// # Upload Handling
//
// The bytes of every multipart part are concatenated in arrival order,
// regardless of field name, and the result is decoded as a single image.
// Clients normally send exactly one file field.
//
// # Middleware
//
// Requests pass through, in order: request id (UUIDv4), request logging
// (zerolog), panic recovery, CORS and a body size limit. CORS allows a single
// configured origin, the POST and GET methods, the Content-Type and
// Authorization headers, and caches preflight results for one hour.
//
// # Error Handling
//
// Handlers return errors; a single echo HTTPErrorHandler maps them to a status
// code and a short plain-text body:
//
//	ErrMalformedUpload       400 Malformed multipart upload
//	imaging.ErrInvalidImage  400 Invalid image data
//	imaging.ErrImageTooLarge 413 Image dimensions too large
//	body over the limit      413 Request Entity Too Large
//	imaging.ErrEncode        500 Failed to encode image
//	anything else            500 Internal Server Error
//
// Error details are logged, never returned to the client.
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal().Err(err).Msg("server error")
//	}
package server
