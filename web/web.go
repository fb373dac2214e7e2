// Package web holds the browser presenter page
package web

import _ "embed"

// IndexHTML is the presenter page served at /
//
//go:embed index.html
var IndexHTML []byte
