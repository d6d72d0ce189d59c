// Package web embeds the browser UI: a single page that logs in, lists the
// catalog and runs mood searches against the JSON API.
package web

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed dist
var dist embed.FS

// Assets returns the UI files rooted at dist, so "index.html" rather than
// "dist/index.html".
var Assets = sync.OnceValues(func() (fs.FS, error) {
	return fs.Sub(dist, "dist")
})
