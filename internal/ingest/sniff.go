package ingest

import "github.com/gabriel-vasile/mimetype"

// Sniff detects the content type from the payload bytes. It is only used for
// diagnostics and blob metadata, never for routing.
func Sniff(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return mimetype.Detect(data).String()
}
