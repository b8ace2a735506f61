package executor

import (
	"io"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/input-output-hk/sitepublish/pubtypes"
)

// webTypes covers static-site extensions missing from Go's builtin table on
// hosts without a system MIME database.
var webTypes = map[string]string{
	".txt":         "text/plain; charset=utf-8",
	".map":         "application/json",
	".woff":        "font/woff",
	".woff2":       "font/woff2",
	".ttf":         "font/ttf",
	".otf":         "font/otf",
	".ico":         "image/vnd.microsoft.icon",
	".webmanifest": "application/manifest+json",
	".xml":         "application/xml",
	".rss":         "application/rss+xml",
	".mp4":         "video/mp4",
	".webm":        "video/webm",
}

// detectContentType resolves the content type of key from its extension.
// When the extension is unknown and sniff is set, the first bytes of body are
// inspected; the reader must be rewound by the caller.
func detectContentType(key string, body io.Reader, sniff bool) string {
	if ct := contentTypeFromExtension(key); ct != "" {
		return ct
	}

	if sniff && body != nil {
		if mt, err := mimetype.DetectReader(body); err == nil && mt != nil {
			return mt.String()
		}
	}

	return pubtypes.DefaultContentType
}

// contentTypeFromExtension returns "" for keys whose extension is unknown.
func contentTypeFromExtension(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ext == "" {
		return ""
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return webTypes[ext]
}
