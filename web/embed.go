// Package web embeds the marker demo page served by the API at /.
//
// Usage in the API server:
//
//	import "github.com/seenimoa/graphawesome/web"
//	fs := web.StaticFS() // returns io/fs.FS rooted at static/
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// StaticFS returns a filesystem rooted at the embedded static/ directory.
// This is ready to use with http.FileServerFS or http.FS.
func StaticFS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// static/ is embedded at compile time
		panic("web: " + err.Error())
	}
	return sub
}
