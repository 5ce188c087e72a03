package media

import "testing"

func TestCoverURI(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		baseURL string
		want    string
	}{
		{
			name: "empty ref",
			ref:  "", baseURL: "https://api.shelvesai.app",
			want: "",
		},
		{
			name: "absolute http passthrough",
			ref:  "http://cdn.example/covers/a.jpg", baseURL: "https://api.shelvesai.app",
			want: "http://cdn.example/covers/a.jpg",
		},
		{
			name: "absolute https passthrough",
			ref:  "https://cdn.example/covers/a.jpg", baseURL: "",
			want: "https://cdn.example/covers/a.jpg",
		},
		{
			name: "scheme check is case-insensitive",
			ref:  "HTTPS://cdn.example/a.jpg", baseURL: "https://api.shelvesai.app",
			want: "HTTPS://cdn.example/a.jpg",
		},
		{
			name: "relative path joined to base",
			ref:  "covers/a.jpg", baseURL: "https://api.shelvesai.app",
			want: "https://api.shelvesai.app/media/covers/a.jpg",
		},
		{
			name: "leading slashes stripped",
			ref:  "//covers/a.jpg", baseURL: "https://api.shelvesai.app/",
			want: "https://api.shelvesai.app/media/covers/a.jpg",
		},
		{
			name: "existing media prefix not doubled",
			ref:  "/media/covers/a.jpg", baseURL: "https://api.shelvesai.app",
			want: "https://api.shelvesai.app/media/covers/a.jpg",
		},
		{
			name: "no base URL renders root-relative",
			ref:  "covers/a.jpg", baseURL: "",
			want: "/media/covers/a.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoverURI(tt.ref, tt.baseURL); got != tt.want {
				t.Errorf("CoverURI(%q, %q) = %q, want %q", tt.ref, tt.baseURL, got, tt.want)
			}
		})
	}
}
