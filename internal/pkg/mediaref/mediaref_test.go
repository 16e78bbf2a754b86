package mediaref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "plain key without extension",
			url:  "https://cdn.example.com/images/3f8a1c2d",
			want: "3f8a1c2d",
		},
		{
			name: "extension stripped",
			url:  "https://res.cloudinary.com/demo/image/upload/v123/portfolio/abc123.jpg",
			want: "abc123",
		},
		{
			name: "query string ignored",
			url:  "https://cdn.example.com/images/abc123?v=2",
			want: "abc123",
		},
		{
			name: "fragment ignored",
			url:  "https://cdn.example.com/images/abc123#main",
			want: "abc123",
		},
		{
			name: "trailing slash",
			url:  "https://cdn.example.com/images/abc123/",
			want: "abc123",
		},
		{
			name: "only last dot counts as extension",
			url:  "https://cdn.example.com/images/my.file.name.png",
			want: "my.file.name",
		},
		{
			name: "empty input",
			url:  "",
			want: "",
		},
		{
			name: "bare segment",
			url:  "abc123.webp",
			want: "abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicIDFromURL(tt.url))
		})
	}
}
