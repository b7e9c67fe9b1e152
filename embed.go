package brandsite

import "embed"

// EmbeddedAssets contains static assets shipped with the engine:
// reveal.js (block entrance transitions), carousel-editor.js and
// content-editor.js (admin editor clients).
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
