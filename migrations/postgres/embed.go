// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS contains the ordered *_up.sql migrations.
//
//go:embed *_up.sql
var FS embed.FS
