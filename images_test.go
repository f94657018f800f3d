package quillpress

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImageSize(t *testing.T) {
	w, h, ok := imageSize(encodePNG(t, 40, 20))
	if !ok || w != 40 || h != 20 {
		t.Errorf("imageSize = %d x %d (%v)", w, h, ok)
	}
	if _, _, ok := imageSize([]byte("not an image")); ok {
		t.Errorf("text should not decode")
	}
}

func TestResizeImagePNG(t *testing.T) {
	out, mime, err := resizeImage(encodePNG(t, 40, 20), 10)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	w, h, ok := imageSize(out)
	if !ok || w != 10 || h != 5 {
		t.Errorf("resized to %d x %d", w, h)
	}
}

func TestResizeImageJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 30, 30)), nil); err != nil {
		t.Fatal(err)
	}
	out, mime, err := resizeImage(buf.Bytes(), 15)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", mime)
	}
	if w, h, _ := imageSize(out); w != 15 || h != 15 {
		t.Errorf("resized to %d x %d", w, h)
	}
}

func TestResizeImageNarrowUnchanged(t *testing.T) {
	src := encodePNG(t, 8, 8)
	out, mime, err := resizeImage(src, 100)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "" || !bytes.Equal(out, src) {
		t.Errorf("narrow image should be returned as is")
	}
}

func TestResizeImageInvalid(t *testing.T) {
	if _, _, err := resizeImage([]byte("nope"), 10); !errors.Is(err, errUndecodable) {
		t.Errorf("err = %v, want errUndecodable", err)
	}
}
