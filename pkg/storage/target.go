// Package storage loads source images and persists converted frames.
package storage

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// Suffix replaces the source extension in default output names.
const Suffix = "-4bit.bin"

// Target names one conversion: where the image comes from and where the frame
// goes. An empty Destination means DefaultOutput(Source).
type Target struct {
	Source      string
	Destination string
}

func (t Target) Output() string {
	return lo.Ternary(t.Destination != "", t.Destination, DefaultOutput(t.Source))
}

func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DefaultOutput strips the extension of source and appends Suffix. URL
// sources are named after the last path element, relative to the working
// directory.
func DefaultOutput(source string) string {
	if IsURL(source) {
		u, _ := url.Parse(source)
		name := path.Base(u.Path)
		if name == "/" || name == "." {
			return u.Hostname() + Suffix
		}
		return stripExt(name, path.Ext(name)) + Suffix
	}
	return stripExt(source, filepath.Ext(source)) + Suffix
}

// stripExt leaves dotfiles such as ".logo" or "..png" intact.
func stripExt(name, ext string) string {
	base := strings.TrimSuffix(name, ext)
	if i := strings.LastIndexAny(base, "/"+string(filepath.Separator)); i >= 0 {
		base = base[i+1:]
	}
	if strings.Trim(base, ".") == "" {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
