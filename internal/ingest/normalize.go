package ingest

import (
	"path"
	"strings"
)

// Normalize canonicalizes a declared MIME type using DefaultTable.
func Normalize(declared, fileName string) MIMEType {
	return DefaultTable.Normalize(declared, fileName)
}

// Normalize returns the canonical type for an untrusted declared type.
// The extension is only consulted when the declared type is empty or generic.
// The result may still be unsupported.
func (t *Table) Normalize(declared, fileName string) MIMEType {
	_, canonical := t.resolve(declared, fileName)
	return canonical
}

// resolve returns the detected type (declared, or inferred from the extension)
// and the canonical type after alias mapping.
func (t *Table) resolve(declared, fileName string) (string, MIMEType) {
	detected := cleanMIME(declared)
	if detected == "" || detected == mimeOctetStream {
		if inferred, ok := t.ForExtension(extensionOf(fileName)); ok {
			detected = string(inferred)
		}
	}
	if canonical, ok := t.Alias(detected); ok {
		return detected, canonical
	}
	return detected, MIMEType(detected)
}

func cleanMIME(raw string) string {
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		raw = raw[:i]
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

func extensionOf(fileName string) string {
	ext := path.Ext(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
