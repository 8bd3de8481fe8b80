package app

import (
	"net/url"
	"path"
	"strings"
)

// titleOf derives a display title from a media URI: the file name without
// its extension, or the host when the URI has no path.
func titleOf(uri string) string {
	p := uri
	if u, err := url.Parse(uri); err == nil {
		switch {
		case u.Path != "" && u.Path != "/":
			p = u.Path
		case u.Host != "":
			return u.Host
		}
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return uri
	}
	if title := strings.TrimSuffix(base, path.Ext(base)); title != "" {
		return title
	}
	return base
}
