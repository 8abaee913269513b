package imagecodec

import "testing"

func TestResolveMimeType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	cases := []struct {
		name     string
		data     []byte
		declared string
		want     string
	}{
		{name: "declared wins", data: png, declared: "image/webp", want: "image/webp"},
		{name: "parameters stripped", data: png, declared: "Image/JPEG; charset=binary", want: "image/jpeg"},
		{name: "octet stream sniffed", data: png, declared: "application/octet-stream", want: "image/png"},
		{name: "garbage declared sniffed", data: png, declared: ";;", want: "image/png"},
		{name: "text sniffed", data: []byte("hello"), declared: "", want: "text/plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveMimeType(tc.data, tc.declared); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
