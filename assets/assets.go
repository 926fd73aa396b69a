// Package assets embeds the levels shipped with the client.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed all:levels
var levelFS embed.FS

// Levels returns the embedded file system rooted above the levels directory.
func Levels() fs.FS {
	return levelFS
}
