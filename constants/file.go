package constants

import "strings"

// MaxUploadBytes is the local size ceiling for a candidate file (10 MiB).
const MaxUploadBytes int64 = 10 * 1024 * 1024

// Media types understood by the intake validator.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeJPEG = "image/jpeg"
	MediaTypeJPG  = "image/jpg"
	MediaTypePNG  = "image/png"
	MediaTypeGIF  = "image/gif"
)

// ImageMediaTypes holds the image types admitted locally. The extraction
// service only guarantees PDF support, so these are admitted with a warning.
var ImageMediaTypes = map[string]struct{}{
	MediaTypeJPEG: {},
	MediaTypeJPG:  {},
	MediaTypePNG:  {},
	MediaTypeGIF:  {},
}

// extToMediaType is the fallback table used when the platform mime table has no entry.
var extToMediaType = map[string]string{
	"pdf":  MediaTypePDF,
	"jpg":  MediaTypeJPEG,
	"jpeg": MediaTypeJPEG,
	"png":  MediaTypePNG,
	"gif":  MediaTypeGIF,
	"txt":  "text/plain",
	"csv":  "text/csv",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MediaTypeForExt returns the known media type for an extension, or "".
func MediaTypeForExt(ext string) string {
	return extToMediaType[NormalizeExt(ext)]
}
