package exif

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// cleanCaption normalizes a caption to NFC, strips control characters and
// trims surrounding whitespace. Returns "" when nothing usable remains.
func cleanCaption(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Cc)), norm.NFC)
	cleaned, _, err := transform.String(t, s)
	if err != nil {
		cleaned = s
	}
	return strings.TrimSpace(cleaned)
}

// normalizeBearing maps any finite bearing into [0, 360).
func normalizeBearing(b float64) float64 {
	b = math.Mod(b, 360)
	if b < 0 {
		b += 360
	}
	return b
}

// firstNumber extracts the first decimal number from a string, e.g. a
// bearing printed as `123.45 (Magnetic North)`.
func firstNumber(s string) (float64, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseCoordinate converts a printable GPS coordinate to signed decimal
// degrees. Accepts plain decimals ("37.8199") and exiftool's DMS form
// (`37 deg 49' 11.64" N`). The hemisphere may come from a trailing letter
// in the value or from the separate Ref tag; south and west are negative.
func parseCoordinate(s, ref string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	nums := numberRe.FindAllString(s, 3)
	if len(nums) == 0 {
		return 0, false
	}

	parts := make([]float64, 0, 3)
	for _, n := range nums {
		v, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		parts = append(parts, v)
	}

	deg := math.Abs(parts[0])
	if len(parts) > 1 {
		deg += parts[1] / 60
	}
	if len(parts) > 2 {
		deg += parts[2] / 3600
	}
	if parts[0] < 0 {
		deg = -deg
	}

	// Hemisphere letter inside the value wins over the Ref tag.
	hemi := hemisphereOf(s)
	if hemi == 0 {
		hemi = hemisphereOf(ref)
	}
	return applyHemisphereSign(deg, hemi), true
}

// applyHemisphere flips the sign of an already-numeric coordinate when
// the Ref tag names a southern or western hemisphere.
func applyHemisphere(v float64, ref string) float64 {
	return applyHemisphereSign(v, hemisphereOf(ref))
}

func applyHemisphereSign(v float64, hemi rune) float64 {
	switch hemi {
	case 'S', 'W':
		return -math.Abs(v)
	case 'N', 'E':
		return math.Abs(v)
	default:
		return v
	}
}

// hemisphereOf returns the last N/S/E/W word-initial letter in s, or 0.
// Matches both single letters ("N") and exiftool's long form ("North").
func hemisphereOf(s string) rune {
	hemi := rune(0)
	for _, w := range strings.Fields(s) {
		r := unicode.ToUpper(rune(w[0]))
		switch r {
		case 'N', 'S', 'E', 'W':
			hemi = r
		}
	}
	return hemi
}
