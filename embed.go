package advocaciaweb

import "embed"

// TemplateFS contains the embedded HTML templates used to render the site. Templates are split into a
// layout, the single page, and the partials that the chat and contact endpoints render on their own.
//
//go:embed templates/*
var TemplateFS embed.FS

// StaticFS contains the embedded stylesheet and the script that drives the chat widget.
//
//go:embed static/*
var StaticFS embed.FS
