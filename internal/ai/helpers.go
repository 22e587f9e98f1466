package ai

import (
	"fmt"
	"strings"
)

// buildHintMessage renders the photo context block sent alongside the
// image. Shared across all providers.
func buildHintMessage(hint *Hint) string {
	var b strings.Builder
	b.WriteString("Write a caption for this photo.\n")
	if hint == nil {
		return b.String()
	}
	if hint.FileName != "" {
		fmt.Fprintf(&b, "File name: %s\n", hint.FileName)
	}
	if !hint.TakenAt.IsZero() {
		fmt.Fprintf(&b, "Taken: %s\n", hint.TakenAt.Format("2006-01-02"))
	}
	if hint.HasLocation {
		fmt.Fprintf(&b, "GPS: %.4f, %.4f\n", hint.Latitude, hint.Longitude)
	}
	if hint.CameraMake != "" || hint.CameraModel != "" {
		fmt.Fprintf(&b, "Camera: %s %s\n", hint.CameraMake, hint.CameraModel)
	}
	return b.String()
}

// cleanCaptionResponse trims the model output into a single caption line.
func cleanCaptionResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
