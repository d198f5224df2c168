// Package appfs exposes the embedded application assets:
// database migrations and email templates.
package appfs

import "embed"

//go:embed migrations assets
var FS embed.FS
