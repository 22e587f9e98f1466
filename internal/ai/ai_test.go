package ai

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/photo-appendix/internal/config"
)

func TestBuildHintMessage(t *testing.T) {
	t.Run("nil hint", func(t *testing.T) {
		msg := buildHintMessage(nil)
		if !strings.Contains(msg, "caption") {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("full hint", func(t *testing.T) {
		msg := buildHintMessage(&Hint{
			FileName:    "IMG_0042.jpg",
			TakenAt:     time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
			HasLocation: true,
			Latitude:    37.8199,
			Longitude:   -122.4783,
			CameraMake:  "Apple",
			CameraModel: "iPhone 14",
		})
		for _, want := range []string{"IMG_0042.jpg", "2023-06-01", "37.8199", "-122.4783", "Apple"} {
			if !strings.Contains(msg, want) {
				t.Errorf("message missing %q:\n%s", want, msg)
			}
		}
	})

	t.Run("absent fields omitted", func(t *testing.T) {
		msg := buildHintMessage(&Hint{FileName: "x.jpg"})
		if strings.Contains(msg, "GPS") || strings.Contains(msg, "Taken") {
			t.Errorf("absent fields should be omitted:\n%s", msg)
		}
	})
}

func TestCleanCaptionResponse(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"A bridge at sunset.", "A bridge at sunset."},
		{`"Quoted caption"`, "Quoted caption"},
		{"First line\nsecond line", "First line"},
		{"  padded  ", "padded"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := cleanCaptionResponse(tc.in); got != tc.want {
			t.Errorf("cleanCaptionResponse(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResizeImage(t *testing.T) {
	makeJPEG := func(w, h int) []byte {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := range h {
			for x := range w {
				img.Set(x, y, color.RGBA{uint8(x), uint8(y), 100, 255})
			}
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}

	t.Run("large image is scaled down", func(t *testing.T) {
		out, err := ResizeImage(makeJPEG(1600, 800), 800)
		if err != nil {
			t.Fatalf("ResizeImage failed: %v", err)
		}
		img, _, err := image.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("output not decodable: %v", err)
		}
		if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 400 {
			t.Errorf("unexpected size %v", img.Bounds())
		}
	})

	t.Run("small image keeps dimensions", func(t *testing.T) {
		out, err := ResizeImage(makeJPEG(100, 50), 800)
		if err != nil {
			t.Fatalf("ResizeImage failed: %v", err)
		}
		img, _, err := image.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
			t.Errorf("unexpected size %v", img.Bounds())
		}
	})

	t.Run("garbage input", func(t *testing.T) {
		if _, err := ResizeImage([]byte("not an image"), 800); err == nil {
			t.Error("expected decode error")
		}
	})
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("unconfigured", func(t *testing.T) {
		if _, err := NewProvider(ctx, config.AIConfig{}); err == nil {
			t.Error("expected error for missing provider")
		}
	})

	t.Run("openai without token", func(t *testing.T) {
		if _, err := NewProvider(ctx, config.AIConfig{Provider: "openai"}); err == nil {
			t.Error("expected error for missing token")
		}
	})

	t.Run("openai with token", func(t *testing.T) {
		p, err := NewProvider(ctx, config.AIConfig{Provider: "openai", OpenAIToken: "test"})
		if err != nil {
			t.Fatalf("NewProvider failed: %v", err)
		}
		if p.Name() == "" {
			t.Error("provider should have a name")
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		if _, err := NewProvider(ctx, config.AIConfig{Provider: "clippy"}); err == nil {
			t.Error("expected error for unknown provider")
		}
	})
}
