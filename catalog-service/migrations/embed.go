// Package migrations хранит SQL миграции схемы каталога для goose
package migrations

import "embed"

// FS содержит все *.sql файлы каталога
//
//go:embed *.sql
var FS embed.FS
