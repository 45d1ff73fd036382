//go:build js && wasm

// Command grayscale-wasm exposes the pixel grayscale transform to JavaScript.
//
// Build with:
//
//	GOOS=js GOARCH=wasm go build -o grayscale.wasm ./cmd/grayscale-wasm
//
// and load it with the wasm_exec.js shim shipped with Go. Once running, the
// module defines two globals:
//
//	grayscale(data, width, height) -> ImageData | Error
//	grayscaleVersion               -> string
//
// data must be a Uint8ClampedArray or Uint8Array of width*height*4 RGBA
// bytes, typically ctx.getImageData(...).data. It is rewritten in place and
// the returned ImageData views the same memory. Failures are returned as an
// Error object rather than thrown.
package main

import (
	"fmt"
	"os"
	"syscall/js"

	"github.com/rs/zerolog"

	"github.com/ironsheep/image-grayscale/internal/pixel"
)

// Version information - set by ldflags during build
var Version = "dev"

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, NoColor: true}).With().Timestamp().Logger()

func main() {
	js.Global().Set("grayscale", js.FuncOf(grayscale))
	js.Global().Set("grayscaleVersion", Version)
	logger.Info().Str("version", Version).Msg("grayscale module ready")

	// Callbacks registered with js.FuncOf only run while main is alive.
	select {}
}

func grayscale(_ js.Value, args []js.Value) (result any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("grayscale failed")
			result = jsError(fmt.Sprint(r))
		}
	}()

	if len(args) != 3 {
		return jsError(fmt.Sprintf("grayscale expects (data, width, height), got %d arguments", len(args)))
	}

	data := args[0]
	clamped := js.Global().Get("Uint8ClampedArray")
	switch {
	case data.InstanceOf(clamped):
	case data.InstanceOf(js.Global().Get("Uint8Array")):
		// ImageData only accepts clamped arrays; this view shares the caller's memory.
		data = clamped.New(data.Get("buffer"), data.Get("byteOffset"), data.Get("length"))
	default:
		return jsError("grayscale: data must be a Uint8ClampedArray or Uint8Array")
	}

	if !isSafeInteger(args[1]) || !isSafeInteger(args[2]) {
		return jsError("grayscale: width and height must be integers")
	}
	width, height, err := pixel.Dimensions(args[1].Int(), args[2].Int())
	if err != nil {
		return jsError("grayscale: " + err.Error())
	}

	// Go's linear memory cannot alias a JS array, so the samples make one round trip.
	buf := make([]byte, data.Get("length").Int())
	js.CopyBytesToGo(buf, data)

	surface, err := pixel.Grayscale(buf, width, height)
	if err != nil {
		return jsError("grayscale: " + err.Error())
	}
	js.CopyBytesToJS(data, surface.Pix)

	if surface.Width == 0 || surface.Height == 0 {
		// The ImageData constructor rejects zero dimensions.
		return js.ValueOf(map[string]any{
			"data":   data,
			"width":  int(surface.Width),
			"height": int(surface.Height),
		})
	}

	return js.Global().Get("ImageData").New(data, int(surface.Width), int(surface.Height))
}

// isSafeInteger rejects non-numbers, fractions, NaN, the infinities and
// integers beyond 2^53, none of which convert to an int reliably.
func isSafeInteger(v js.Value) bool {
	return v.Type() == js.TypeNumber && js.Global().Get("Number").Call("isSafeInteger", v).Bool()
}

func jsError(msg string) js.Value {
	return js.Global().Get("Error").New(msg)
}
