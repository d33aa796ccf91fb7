package domain

import (
	"fmt"
	"strings"
)

// MediaKind enumerates supported media types.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

var (
	imageExtensions = []string{"jpeg", "jpg", "png", "gif"}
	videoExtensions = []string{"mp4", "mkv", "avi", "mov", "wmv"}
)

// Asset is a user-submitted file held in memory for the duration of one
// upload workflow. It is immutable once built.
type Asset struct {
	Name string
	Kind MediaKind
	Data []byte
}

// Size returns the original byte length of the asset.
func (a Asset) Size() int64 {
	return int64(len(a.Data))
}

// Validate checks that the asset carries enough information to be uploaded.
func (a Asset) Validate() error {
	if len(a.Data) == 0 {
		return NewValidationError("no file uploaded")
	}
	if a.Kind != MediaKindImage && a.Kind != MediaKindVideo {
		return NewValidationError(fmt.Sprintf("unknown media kind: %q", a.Kind))
	}
	_, err := ValidateFilename(a.Name, a.Kind)
	return err
}

// SupportedExtensions returns the allow-list for the given kind.
func SupportedExtensions(kind MediaKind) []string {
	if kind == MediaKindVideo {
		return videoExtensions
	}
	return imageExtensions
}

// ExtractExtension returns the lowercased extension of a filename, or an
// empty string when the name carries none.
func ExtractExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// ValidateFilename checks that the filename has an extension and that the
// extension is in the allow-list for the given media kind. Matching is
// case-insensitive. It returns the normalized extension.
func ValidateFilename(name string, kind MediaKind) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", NewValidationError("no file uploaded")
	}
	ext := ExtractExtension(name)
	if ext == "" {
		return "", NewValidationError("file must have a valid extension")
	}
	allowed := SupportedExtensions(kind)
	for _, candidate := range allowed {
		if ext == candidate {
			return ext, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf(
		"Unsupported file type: %s. Only %s are allowed.", ext, strings.Join(allowed, ", ")))
}

// UploadResult is what the media store reports back after an original-asset
// upload succeeds.
type UploadResult struct {
	PublicID     string `json:"public_id"`
	SecureURL    string `json:"secure_url"`
	Bytes        int64  `json:"bytes"`
	Format       string `json:"format"`
	ResourceType string `json:"resource_type"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

// CompressionResult is the terminal output of a successful compression
// workflow run.
type CompressionResult struct {
	Data             []byte
	OriginalSize     int64
	CompressedSize   int64
	PercentReduction int
	OriginalURL      string
	CompressedURL    string
	Upload           *UploadResult
}

// PercentReduction computes the size reduction as a rounded percentage,
// clamped to zero when the transformed payload came back larger than the
// original.
func PercentReduction(originalSize, compressedSize int64) int {
	if originalSize <= 0 {
		return 0
	}
	if compressedSize >= originalSize {
		return 0
	}
	saved := float64(originalSize-compressedSize) / float64(originalSize) * 100
	return int(saved + 0.5)
}
