package simplevault

import (
	"net/http"
	"regexp"
	"strings"
)

// Extension -> MIME maps per media family. These define the formats each
// resource type accepts on upload.
var (
	documentMimetypes = map[string]string{
		"txt":  "text/plain",
		"pdf":  "application/pdf",
		"epub": "application/epub+zip",
		"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"doc":  "application/msword",
		"xps":  "application/vnd.ms-xpsdocument",
		"cbz":  "application/x-cbz",
		"fb2":  "application/x-fictionbook+xml",
		"mobi": "application/x-mobipocket-ebook",
	}

	imageMimetypes = map[string]string{
		"heic": "image/heic",
		"jpg":  "image/jpeg",
		"jpeg": "image/jpeg",
		"png":  "image/png",
		"webp": "image/webp",
	}

	audioMimetypes = map[string]string{
		"mp3":  "audio/mpeg",
		"wav":  "audio/wav",
		"flac": "audio/flac",
		"m4a":  "audio/x-m4a",
		"m4p":  "audio/mp4",
		"aac":  "audio/aac",
		"ogg":  "audio/ogg",
		"opus": "audio/opus",
		"mid":  "audio/midi",
		"midi": "audio/midi",
		"aiff": "audio/x-aiff",
		"ape":  "audio/ape",
		"wv":   "audio/x-wavpack",
		"mpc":  "audio/x-musepack",
	}

	videoMimetypes = map[string]string{
		"mov":  "video/quicktime",
		"mp4":  "video/mp4",
		"avi":  "video/x-msvideo",
		"webm": "video/webm",
		"mkv":  "video/x-matroska",
	}
)

// allowedMimetypes maps each resource type to its extension -> MIME table.
var allowedMimetypes = map[ResourceType]map[string]string{
	ResourceTypeBooks:     documentMimetypes,
	ResourceTypeDocuments: documentMimetypes,
	ResourceTypeImages:    imageMimetypes,
	ResourceTypeMusic:     audioMimetypes,
	ResourceTypeVideos:    videoMimetypes,
}

// mimeExtensions is the reverse MIME -> extension table across all families.
// Built once at init; ambiguous entries are pinned afterwards.
var mimeExtensions = func() map[string]string {
	m := make(map[string]string)
	for _, table := range []map[string]string{documentMimetypes, imageMimetypes, audioMimetypes, videoMimetypes} {
		for ext, mt := range table {
			m[mt] = ext
		}
	}
	m["image/jpeg"] = "jpg"
	m["audio/midi"] = "mid"
	m["audio/mp4"] = "m4a"
	return m
}()

// MimeAllowed reports whether mimetype is accepted for the resource type.
func MimeAllowed(resourceType ResourceType, mimetype string) bool {
	table, ok := allowedMimetypes[resourceType]
	if !ok {
		return false
	}
	for _, mt := range table {
		if mt == mimetype {
			return true
		}
	}
	return false
}

// ExtensionForMime returns the canonical file extension for a MIME type, or
// "unknown" when the type is not recognized.
func ExtensionForMime(mimetype string) string {
	if ext, ok := mimeExtensions[mimetype]; ok {
		return ext
	}
	return "unknown"
}

// MimeForExtension returns the MIME type registered for a file extension
// within the given resource type, or application/octet-stream.
func MimeForExtension(resourceType ResourceType, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if mt, ok := allowedMimetypes[resourceType][ext]; ok {
		return mt
	}
	return "application/octet-stream"
}

// DetectMimetype resolves the MIME type of an upload. The declared type wins
// when it is specific; otherwise the filename extension is consulted, then
// content sniffing over the first 512 bytes.
func DetectMimetype(declared, filename string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext := strings.ToLower(filename[idx+1:])
		for _, table := range allowedMimetypes {
			if mt, ok := table[ext]; ok {
				return mt
			}
		}
	}
	if len(data) > 0 {
		n := len(data)
		if n > 512 {
			n = 512
		}
		return http.DetectContentType(data[:n])
	}
	return "application/octet-stream"
}

// IsImageMime reports whether the MIME type belongs to the image family.
func IsImageMime(mimetype string) bool {
	return strings.HasPrefix(mimetype, "image/")
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-.]`)

// SanitizeFilename strips control characters, replaces unsafe characters with
// underscores and trims leading/trailing dots and underscores. An absent
// filename stays empty so callers can apply their own placeholder; a non-empty
// name that sanitizes to nothing falls back to "file".
func SanitizeFilename(filename string) string {
	if filename == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range filename {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := unsafeFilenameChars.ReplaceAllString(b.String(), "_")
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}
