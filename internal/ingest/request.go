package ingest

import "strings"

// UploadRequest is the transient input to the pipeline, built per HTTP call.
type UploadRequest struct {
	Data          []byte
	DeclaredType  string
	FileName      string
	Title         string
	Tags          []string
	IsHandwritten bool
}

// NormalizedFile is an admitted upload. CanonicalType is always supported.
type NormalizedFile struct {
	CanonicalType MIMEType
	DeclaredType  string
	SizeBytes     int64
	FileName      string
}

// TitleOrDefault returns the trimmed title, or the file name when blank.
func TitleOrDefault(title, fileName string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return strings.TrimSpace(fileName)
}

// ParseTags splits a comma-separated list, trimming entries and dropping empties.
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
