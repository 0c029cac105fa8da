// Package web embeds the dashboard templates and static assets so the
// binary is self-contained.
package web

import "embed"

// TemplatesFS holds the HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the css and js served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
