package assets

import "embed"

// AssetsFS holds the stylesheet and the exercise builder script.
//
//go:embed css js
var AssetsFS embed.FS
