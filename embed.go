package minutes

import "embed"

//go:embed web/pages
var PagesFS embed.FS
