package executor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/input-output-hk/sitepublish/pubtypes"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		key   string
		body  string
		sniff bool
		want  string
	}{
		{key: "index.html", want: "text/html"},
		{key: "css/site.CSS", want: "text/css"},
		{key: "js/app.js", want: "javascript"},
		{key: "img/logo.svg", want: "image/svg+xml"},
		{key: "fonts/a.woff2", want: "woff2"},
		{key: "LICENSE", want: pubtypes.DefaultContentType},
		{key: "data.zzq", want: pubtypes.DefaultContentType},
		{key: "data.zzq", body: "\x89PNG\r\n\x1a\n", sniff: true, want: "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := detectContentType(tt.key, strings.NewReader(tt.body), tt.sniff)
			assert.Contains(t, got, tt.want)
		})
	}
}
