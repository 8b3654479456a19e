// Package appfs embeds the static assets shipped with the binary:
// SQL migrations, comment templates, email templates and HTML views.
package appfs

import "embed"

//go:embed migrations all:templates all:views
var FS embed.FS
