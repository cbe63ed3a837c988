package documents

import "time"

// UploadResponse is returned by the upload endpoints. FileType is the canonical MIME type.
type UploadResponse struct {
	Success          bool   `json:"success"`
	DocumentID       string `json:"documentId"`
	Text             string `json:"text"`
	FileURL          string `json:"fileUrl"`
	FileName         string `json:"fileName"`
	FileType         string `json:"fileType"`
	FileSize         int64  `json:"fileSize"`
	ProcessingMethod string `json:"processingMethod"`
}

// DocumentSummary is the list representation of a document.
type DocumentSummary struct {
	DocumentID       string    `json:"documentId"`
	Title            string    `json:"title"`
	FileType         string    `json:"fileType"`
	FileName         string    `json:"fileName"`
	FileURL          string    `json:"fileUrl"`
	ProcessingMethod string    `json:"processingMethod"`
	Tags             []string  `json:"tags"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toUploadResponse(res UploadResult) UploadResponse {
	return UploadResponse{
		Success:          true,
		DocumentID:       res.Document.ID,
		Text:             res.Document.Content,
		FileURL:          res.Document.FileURL,
		FileName:         res.Document.FileName,
		FileType:         res.CanonicalType.String(),
		FileSize:         res.Document.SizeBytes,
		ProcessingMethod: res.Document.ProcessingMethod,
	}
}

func toSummary(doc Document) DocumentSummary {
	return DocumentSummary{
		DocumentID:       doc.ID,
		Title:            doc.Title,
		FileType:         doc.FileType,
		FileName:         doc.FileName,
		FileURL:          doc.FileURL,
		ProcessingMethod: doc.ProcessingMethod,
		Tags:             doc.Tags,
		CreatedAt:        doc.CreatedAt,
	}
}
