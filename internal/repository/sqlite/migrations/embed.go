package migrations

import "embed"

// FS holds the ordered schema migrations. Files are applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
