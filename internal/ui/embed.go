package ui

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/**
var assets embed.FS

// FS returns a http.FileSystem for the embedded UI assets.
func FS() http.FileSystem {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		return http.FS(assets)
	}
	return http.FS(sub)
}

// Plugins returns the embedded plugin bundles, one directory per plugin.
func Plugins() fs.FS {
	sub, err := fs.Sub(assets, "static/plugins")
	if err != nil {
		return assets
	}
	return sub
}
