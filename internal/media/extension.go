package media

import (
	"path"
	"strings"
)

// DefaultExtension is returned when neither the URL nor the MIME hint
// identifies the content type.
const DefaultExtension = "bin"

// knownExtensions are the image and video extensions recognised in
// URLs. Anything else in a URL path is treated as noise rather than a
// content-type signal.
var knownExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"webp": true, "svg": true, "bmp": true, "tif": true, "tiff": true,
	"avif": true, "mp4": true, "webm": true, "mov": true, "m4v": true,
	"mkv": true, "avi": true, "mp3": true, "wav": true, "ogg": true,
	"glb": true, "gltf": true, "pdf": true, "html": true,
}

// mimeExtensions maps normalized MIME types to extensions. Providers
// frequently report bare subtypes ("jpeg") or legacy aliases
// ("image/jpg"); both are normalized before lookup.
var mimeExtensions = map[string]string{
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
	"image/bmp":     "bmp",
	"image/tiff":    "tiff",
	"image/avif":    "avif",
	"video/mp4":     "mp4",
	"video/webm":    "webm",
	"video/quicktime": "mov",
	"video/x-m4v":    "m4v",
	"audio/mpeg":     "mp3",
	"audio/wav":      "wav",
	"audio/ogg":      "ogg",
	"model/gltf-binary": "glb",
	"model/gltf+json":   "gltf",
	"application/pdf":   "pdf",
	"text/html":         "html",
}

// ResolveExtension derives a lowercase file extension (no leading dot)
// for a URL and optional MIME hint. The URL wins over the hint because
// provider-supplied MIME metadata is sometimes wrong or generic
// (application/octet-stream) while URLs tend to name the actual file.
// Falls back to DefaultExtension; never fails.
func ResolveExtension(url, mimeHint string) string {
	if ext := extensionFromURL(url); ext != "" {
		return ext
	}
	if ext := extensionFromMIME(mimeHint); ext != "" {
		return ext
	}
	return DefaultExtension
}

// extensionFromURL returns the recognised extension of the URL path
// with any query string stripped, or "".
func extensionFromURL(url string) string {
	trimmed, _, _ := strings.Cut(url, "?")
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(trimmed), "."))
	if knownExtensions[ext] {
		return ext
	}
	return ""
}

// extensionFromMIME maps a MIME hint to an extension, or "".
func extensionFromMIME(hint string) string {
	mime := NormalizeMIME(hint)
	if mime == "" {
		return ""
	}
	return mimeExtensions[mime]
}

// NormalizeMIME lowercases a MIME hint, strips parameters such as
// ";charset=", and expands bare subtypes ("jpeg", "png") into full
// image types the way providers intend them.
func NormalizeMIME(hint string) string {
	mime, _, _ := strings.Cut(hint, ";")
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "" {
		return ""
	}
	if !strings.Contains(mime, "/") {
		switch mime {
		case "jpg", "jpeg":
			return "image/jpeg"
		case "svg":
			return "image/svg+xml"
		default:
			return "image/" + mime
		}
	}
	return mime
}
