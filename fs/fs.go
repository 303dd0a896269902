// Package appfs embeds the files the binaries ship with: SQL migrations, email templates and portal sections.
package appfs

import "embed"

//go:embed migrations/*.sql templates templates/email/_base.* sections assets
var FS embed.FS
