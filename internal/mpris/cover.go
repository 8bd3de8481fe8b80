//go:build linux

package mpris

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// artworkNames lists common poster filenames in priority order.
var artworkNames = []string{
	"poster.jpg", "poster.png",
	"folder.jpg", "folder.png",
	"cover.jpg", "cover.png",
	"fanart.jpg", "fanart.png",
}

// FindArtwork looks for a poster next to a local media file. The media's own
// "<name>-poster.jpg" wins over directory-wide names. Returns a file:// URL,
// or empty string if uri is not local or nothing was found.
func FindArtwork(uri string) string {
	path, ok := localPath(uri)
	if !ok {
		return ""
	}

	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	candidates := append([]string{stem + "-poster.jpg", stem + "-poster.png"}, artworkNames...)
	for _, name := range candidates {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return (&url.URL{Scheme: "file", Path: p}).String()
		}
	}
	return ""
}

func localPath(uri string) (string, bool) {
	if filepath.IsAbs(uri) {
		return uri, true
	}
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	return u.Path, u.Path != ""
}
