package ingest

import "strings"

// MIMEType is a lowercase media type without parameters.
type MIMEType string

const (
	MIMEPDF     MIMEType = "application/pdf"
	MIMEMSWord  MIMEType = "application/msword"
	MIMEWordXML MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText    MIMEType = "text/plain"
	MIMEJPEG    MIMEType = "image/jpeg"
	MIMEPNG     MIMEType = "image/png"

	mimeOctetStream = "application/octet-stream"
)

// IsImage reports whether the type is in the image/ family.
func (m MIMEType) IsImage() bool {
	return strings.HasPrefix(string(m), "image/")
}

func (m MIMEType) String() string {
	return string(m)
}

// FileType is the coarse classification stored on a document record.
type FileType string

const (
	FileTypePDF         FileType = "pdf"
	FileTypeText        FileType = "text"
	FileTypeImage       FileType = "image"
	FileTypeHandwritten FileType = "handwritten"
)

// Table holds every MIME lookup used by the pipeline. It has no mutating
// methods, so one value can be shared by the normalizer, the guard and the
// record mapper.
type Table struct {
	aliases    map[string]MIMEType
	extensions map[string]MIMEType
	supported  map[MIMEType]FileType
}

// DefaultTable is the process-wide lookup table.
var DefaultTable = &Table{
	aliases: map[string]MIMEType{
		"application/x-pdf":    MIMEPDF,
		"application/acrobat":  MIMEPDF,
		"applications/vnd.pdf": MIMEPDF,
		"text/pdf":             MIMEPDF,
		"text/x-pdf":           MIMEPDF,

		"application/vnd.ms-word": MIMEMSWord,
		"application/vnd.msword":  MIMEMSWord,
		"application/doc":         MIMEMSWord,
		"application/word":        MIMEMSWord,

		"application/docx": MIMEWordXML,

		"image/jpg": MIMEJPEG,
	},
	extensions: map[string]MIMEType{
		"pdf":  MIMEPDF,
		"doc":  MIMEMSWord,
		"docx": MIMEWordXML,
		"txt":  MIMEText,
		"jpg":  MIMEJPEG,
		"jpeg": MIMEJPEG,
		"png":  MIMEPNG,
	},
	supported: map[MIMEType]FileType{
		MIMEPDF:     FileTypePDF,
		MIMEMSWord:  FileTypePDF,
		MIMEWordXML: FileTypePDF,
		MIMEText:    FileTypeText,
		MIMEJPEG:    FileTypeImage,
		MIMEPNG:     FileTypeImage,
	},
}

// Alias returns the canonical type for a known alias spelling.
func (t *Table) Alias(declared string) (MIMEType, bool) {
	m, ok := t.aliases[declared]
	return m, ok
}

// IsAlias reports whether declared is a key of the alias table.
func (t *Table) IsAlias(declared string) bool {
	_, ok := t.aliases[declared]
	return ok
}

// ForExtension returns the type registered for a lowercase extension without the dot.
func (t *Table) ForExtension(ext string) (MIMEType, bool) {
	m, ok := t.extensions[ext]
	return m, ok
}

// Supported reports whether m is in the accepted enumeration.
func (t *Table) Supported(m MIMEType) bool {
	_, ok := t.supported[m]
	return ok
}

// FileTypeOf maps a canonical type to the stored classification. Unknown types
// fall back to text. Handwritten images are classified as handwritten.
func (t *Table) FileTypeOf(m MIMEType, isHandwritten bool) FileType {
	if isHandwritten && m.IsImage() {
		return FileTypeHandwritten
	}
	if ft, ok := t.supported[m]; ok {
		return ft
	}
	if m.IsImage() {
		return FileTypeImage
	}
	return FileTypeText
}
