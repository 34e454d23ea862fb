package web

import "embed"

// Templates holds the embedded HTML page templates.
// Handlers parse it with template.ParseFS(Templates, "templates/*.html").
//
//go:embed templates/*.html
var Templates embed.FS
