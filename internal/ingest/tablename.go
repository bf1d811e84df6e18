package ingest

import "strings"

// Tablename derives the physical table name of an upload from its filename: the directory part
// and the final extension are dropped and the remaining dot-separated segments joined with "_".
// A filename without any dot is used as-is.
func Tablename(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}

	parts := strings.Split(base, ".")
	if len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}

	return strings.Join(parts, "_")
}
