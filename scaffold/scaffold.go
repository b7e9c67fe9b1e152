// Package scaffold provides embedded template files for the brandsite CLI
// "new" command, which lays out a fresh site workspace.
package scaffold

import "embed"

// Templates holds the site workspace skeleton. Files ending in .tmpl are
// executed as Go text templates; "dotenv" is written out as .env.example.
//
//go:embed all:templates
var Templates embed.FS
