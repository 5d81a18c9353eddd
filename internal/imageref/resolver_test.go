package imageref

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const apiBase = "https://api.survey.test"

func TestNormalize(t *testing.T) {
	r := New(apiBase + "/")
	longB64 := strings.Repeat("QUJD", 20) // 80 chars

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "   ", ""},
		{"relative path", "photos/front.jpg", apiBase + "/photos/front.jpg"},
		{"rooted path", "/media/scan.png", apiBase + "/media/scan.png"},
		{"dot relative", "./media/scan.png", apiBase + "/media/scan.png"},
		{"parent relative", "../../media/scan.png", apiBase + "/media/scan.png"},
		{"assets", "assets/house.jpg", apiBase + "/assets/house.jpg"},
		{"https passthrough", "https://cdn.test/a.jpg", "https://cdn.test/a.jpg"},
		{"protocol relative", "//cdn.test/a.jpg", "//cdn.test/a.jpg"},
		{"blob passthrough", "blob:https://app/123", "blob:https://app/123"},
		{"data url", "data:image/png;base64,iVBORw0KGgo=", "data:image/png;base64,iVBORw0KGgo="},
		{"data url with whitespace", "data:image/png;base64,iVBO Rw0K\nGgo=", "data:image/png;base64,iVBORw0KGgo="},
		{"data url path payload", "data:image/png;base64,uploads/a b.png", apiBase + "/uploads/a b.png"},
		{"data url payload not a multiple of 4", "data:image/png;base64,abc", apiBase + "/abc"},
		{"data url absolute payload", "data:image/png;base64,https://cdn.test/x.png", "https://cdn.test/x.png"},
		{"data url protocol relative payload", "data:image/png;base64,//cdn.test/x.png", "//cdn.test/x.png"},
		{"bare base64", longB64, "data:image/jpeg;base64," + longB64},
		{"short base64 is a path", "QUJD", apiBase + "/QUJD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Normalize(tt.input))
		})
	}
}

func TestNormalize_DataURLUnchanged(t *testing.T) {
	r := New(apiBase)
	in := "data:image/jpeg;base64,/9j/4AAQSkZJRg=="
	assert.Equal(t, in, r.Normalize(in))
}

func TestIsPlaceholder(t *testing.T) {
	for _, v := range []string{"https://example.com/house.jpg", "URL_TO_IMAGE", "placeholder.png", "null", "-", "N/A", " n/a "} {
		assert.True(t, IsPlaceholder(v), v)
	}
	for _, v := range []string{"", "https://cdn.test/a.jpg", "data:image/png;base64,AAAA", "nullable.png"} {
		assert.False(t, IsPlaceholder(v), v)
	}
}

func TestPreview(t *testing.T) {
	r := New(apiBase)
	assert.Equal(t, apiBase+"/a.jpg", r.Preview("", "n/a", "https://example.com/x.jpg", "a.jpg", "b.jpg"))
	assert.Equal(t, "", r.Preview("", "null"))
	assert.Equal(t, []string{apiBase + "/a.jpg", "https://cdn.test/b.jpg"}, r.NormalizeAll("a.jpg", "-", "https://cdn.test/b.jpg"))
}
