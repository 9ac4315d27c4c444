// Package content embeds the course chapter documents served by the lesson
// catalog.
package content

import "embed"

//go:embed *.yaml
var FS embed.FS
