package web

import (
	"io/fs"
	"testing"
)

func TestAssets(t *testing.T) {
	assets, err := Assets()
	if err != nil {
		t.Fatalf("Assets() error = %v", err)
	}
	for _, name := range []string{"index.html", "app.js", "style.css"} {
		if _, err := fs.Stat(assets, name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
