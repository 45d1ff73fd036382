//go:build js && wasm

package main

import (
	"bytes"
	"math"
	"strings"
	"syscall/js"
	"testing"
)

// Run with: GOOS=js GOARCH=wasm go test -exec="$(go env GOROOT)/lib/wasm/go_js_wasm_exec" ./cmd/grayscale-wasm

func TestMain(m *testing.M) {
	// Node has no DOM; stand in for ImageData with a plain object constructor.
	if js.Global().Get("ImageData").IsUndefined() {
		js.Global().Set("ImageData", js.FuncOf(func(_ js.Value, args []js.Value) any {
			return js.ValueOf(map[string]any{
				"data":   args[0],
				"width":  args[1],
				"height": args[2],
			})
		}))
	}
	m.Run()
}

// newArray creates a JS typed array of the named kind holding b.
func newArray(kind string, b []byte) js.Value {
	arr := js.Global().Get(kind).New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func readArray(arr js.Value) []byte {
	b := make([]byte, arr.Get("length").Int())
	js.CopyBytesToGo(b, arr)
	return b
}

func call(args ...any) js.Value {
	vals := make([]js.Value, len(args))
	for i, a := range args {
		vals[i] = js.ValueOf(a)
	}
	return grayscale(js.Undefined(), vals).(js.Value)
}

func isError(v js.Value) bool {
	return v.InstanceOf(js.Global().Get("Error"))
}

func TestGrayscale_ClampedArray(t *testing.T) {
	data := newArray("Uint8ClampedArray", []byte{255, 128, 64, 255, 100, 200, 50, 7})

	result := call(data, 2, 1)

	if isError(result) {
		t.Fatalf("unexpected error: %s", result.Get("message").String())
	}
	if result.Get("width").Int() != 2 || result.Get("height").Int() != 1 {
		t.Errorf("dimensions: got %dx%d, want 2x1", result.Get("width").Int(), result.Get("height").Int())
	}

	want := []byte{149, 149, 149, 255, 116, 116, 116, 7}
	if got := readArray(data); !bytes.Equal(got, want) {
		t.Errorf("caller buffer: got %v, want %v", got, want)
	}
	if got := readArray(result.Get("data")); !bytes.Equal(got, want) {
		t.Errorf("result data: got %v, want %v", got, want)
	}
}

func TestGrayscale_Uint8Array(t *testing.T) {
	data := newArray("Uint8Array", []byte{255, 0, 0, 255})

	result := call(data, 1, 1)

	if isError(result) {
		t.Fatalf("unexpected error: %s", result.Get("message").String())
	}
	if !result.Get("data").InstanceOf(js.Global().Get("Uint8ClampedArray")) {
		t.Error("result data should be a Uint8ClampedArray view")
	}
	if got := readArray(data); !bytes.Equal(got, []byte{85, 85, 85, 255}) {
		t.Errorf("caller buffer: got %v, want [85 85 85 255]", got)
	}
}

func TestGrayscale_ZeroDimensions(t *testing.T) {
	result := call(newArray("Uint8ClampedArray", nil), 0, 5)

	if isError(result) {
		t.Fatalf("unexpected error: %s", result.Get("message").String())
	}
	if result.Get("width").Int() != 0 || result.Get("height").Int() != 5 {
		t.Errorf("dimensions: got %dx%d, want 0x5", result.Get("width").Int(), result.Get("height").Int())
	}
}

func TestGrayscale_InvalidArguments(t *testing.T) {
	pix := []byte{1, 2, 3, 4}

	tests := []struct {
		name    string
		args    []any
		wantMsg string
	}{
		{"no arguments", nil, "expects"},
		{"too many arguments", []any{newArray("Uint8ClampedArray", pix), 1, 1, 1}, "expects"},
		{"plain array", []any{[]any{1, 2, 3, 4}, 1, 1}, "Uint8ClampedArray"},
		{"string data", []any{"pixels", 1, 1}, "Uint8ClampedArray"},
		{"fractional width", []any{newArray("Uint8ClampedArray", pix), 2.7, 1}, "integers"},
		{"NaN height", []any{newArray("Uint8ClampedArray", pix), 1, math.NaN()}, "integers"},
		{"infinite width", []any{newArray("Uint8ClampedArray", pix), math.Inf(1), 1}, "integers"},
		{"unsafe integer", []any{newArray("Uint8ClampedArray", pix), 1e20, 1}, "integers"},
		{"string width", []any{newArray("Uint8ClampedArray", pix), "1", 1}, "integers"},
		{"negative width", []any{newArray("Uint8ClampedArray", pix), -1, 1}, "invalid dimensions"},
		{"length mismatch", []any{newArray("Uint8ClampedArray", pix), 2, 2}, "does not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(tt.args...)

			if !isError(result) {
				t.Fatal("expected an Error object")
			}
			if msg := result.Get("message").String(); !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("message: got %q, want it to contain %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestGrayscale_RejectedArgumentsLeaveBufferUntouched(t *testing.T) {
	data := newArray("Uint8ClampedArray", []byte{10, 20, 30, 40, 50, 60, 70, 80})

	if result := call(data, 1.5, 1); !isError(result) {
		t.Fatal("expected an Error object")
	}
	if got := readArray(data); !bytes.Equal(got, []byte{10, 20, 30, 40, 50, 60, 70, 80}) {
		t.Errorf("buffer modified: %v", got)
	}
}
