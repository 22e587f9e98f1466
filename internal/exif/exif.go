package exif

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/barasher/go-exiftool"
)

// supportedExtensions lists the photo container formats the pipeline accepts.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".heic": true,
	".png":  true,
}

const exifDate = "2006:01:02 15:04:05"

// Coordinates is a GPS position in signed decimal degrees.
type Coordinates struct {
	Latitude  float64 // [-90, 90]
	Longitude float64 // [-180, 180]
}

// Metadata is the normalized, partially-populated record for one photo.
// Optional fields use pointers (or zero values where documented); absence
// is normal and never an error.
type Metadata struct {
	// Caption is the human-readable description, empty when the source
	// metadata lacks one.
	Caption string

	// Coordinates are both present or both absent, never one without
	// the other.
	Coordinates *Coordinates

	// Bearing is the compass direction in degrees clockwise from north,
	// normalized into [0, 360). Nil when the source data has none.
	Bearing *float64

	// Presentation extras, all optional.
	TakenAt time.Time // zero when unknown
	Make    string
	Model   string
	Width   int64
	Height  int64
}

// UnreadablePhotoError means the file could not be opened or is not a
// supported image container at all. This is distinct from "no metadata",
// which degrades field by field instead.
type UnreadablePhotoError struct {
	Path string
	Err  error
}

func (e *UnreadablePhotoError) Error() string {
	return fmt.Sprintf("unreadable photo %s: %v", e.Path, e.Err)
}

func (e *UnreadablePhotoError) Unwrap() error { return e.Err }

// IsSupported reports whether the path has an accepted photo extension.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Extractor reads photo metadata through a long-running exiftool process.
// Safe for concurrent use; the underlying process handles one file at a time.
type Extractor struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

// NewExtractor starts the exiftool process.
func NewExtractor() (*Extractor, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("starting exiftool: %w", err)
	}
	return &Extractor{et: et}, nil
}

// Close stops the exiftool process.
func (e *Extractor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.et != nil {
		_ = e.et.Close()
		e.et = nil
	}
}

// Extract reads one photo's metadata and returns a normalized record.
// Missing or malformed fields independently degrade to absent; only an
// unopenable or unsupported file yields UnreadablePhotoError.
func (e *Extractor) Extract(path string) (Metadata, error) {
	if !IsSupported(path) {
		return Metadata{}, &UnreadablePhotoError{Path: path, Err: fmt.Errorf("unsupported file extension %q", filepath.Ext(path))}
	}
	if _, err := os.Stat(path); err != nil {
		return Metadata{}, &UnreadablePhotoError{Path: path, Err: err}
	}

	e.mu.Lock()
	fis := e.et.ExtractMetadata(path)
	e.mu.Unlock()

	if len(fis) == 0 {
		return Metadata{}, &UnreadablePhotoError{Path: path, Err: fmt.Errorf("exiftool returned no result")}
	}
	fi := fis[0]
	if fi.Err != nil {
		return Metadata{}, &UnreadablePhotoError{Path: path, Err: fi.Err}
	}

	m := Metadata{}
	m.Caption = captionField(fi)
	m.Coordinates = coordinatesField(fi)
	m.Bearing = bearingField(fi)

	if v, err := fi.GetString("Make"); err == nil {
		m.Make = strings.TrimSpace(v)
	}
	if v, err := fi.GetString("Model"); err == nil {
		m.Model = strings.TrimSpace(v)
	}
	if v, err := fi.GetInt("ImageWidth"); err == nil {
		m.Width = v
	}
	if v, err := fi.GetInt("ImageHeight"); err == nil {
		m.Height = v
	}
	if ds, err := fi.GetString("DateTimeOriginal"); err == nil {
		if ts, err := time.Parse(exifDate, ds); err == nil {
			m.TakenAt = ts
		}
	}

	return m, nil
}

// captionField returns the first usable caption-like field, cleaned up.
func captionField(fi exiftool.FileMetadata) string {
	for _, key := range []string{"Caption-Abstract", "ImageDescription", "Description", "Headline"} {
		if v, err := fi.GetString(key); err == nil {
			if c := cleanCaption(v); c != "" {
				return c
			}
		}
	}
	return ""
}

// coordinatesField reads GPS latitude/longitude, normalizing DMS with
// hemisphere references to signed decimal degrees. Malformed or
// out-of-range coordinates are treated as absent, and a lone latitude or
// longitude never survives on its own.
func coordinatesField(fi exiftool.FileMetadata) *Coordinates {
	lat, okLat := coordinateValue(fi, "GPSLatitude", "GPSLatitudeRef")
	lon, okLon := coordinateValue(fi, "GPSLongitude", "GPSLongitudeRef")
	if !okLat || !okLon {
		return nil
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil
	}
	return &Coordinates{Latitude: lat, Longitude: lon}
}

// coordinateValue reads a single coordinate tag, trying the numeric form
// first and falling back to parsing the printable DMS representation.
func coordinateValue(fi exiftool.FileMetadata, key, refKey string) (float64, bool) {
	ref := ""
	if v, err := fi.GetString(refKey); err == nil {
		ref = v
	}
	if v, err := fi.GetFloat(key); err == nil {
		return applyHemisphere(v, ref), true
	}
	if s, err := fi.GetString(key); err == nil {
		return parseCoordinate(s, ref)
	}
	return 0, false
}

// bearingField reads the compass direction the photo was taken facing.
// Values outside [0,360) are normalized modulo 360; non-numeric data is
// treated as absent.
func bearingField(fi exiftool.FileMetadata) *float64 {
	if v, err := fi.GetFloat("GPSImgDirection"); err == nil {
		b := normalizeBearing(v)
		return &b
	}
	if s, err := fi.GetString("GPSImgDirection"); err == nil {
		if v, ok := firstNumber(s); ok {
			b := normalizeBearing(v)
			return &b
		}
	}
	return nil
}
