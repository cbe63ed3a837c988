package documents

import "time"

// Document is the persisted result of one successful upload.
type Document struct {
	ID               string    `json:"id" bson:"_id"`
	UserID           string    `json:"userId" bson:"userId"`
	Title            string    `json:"title" bson:"title"`
	Content          string    `json:"content" bson:"content"`
	OriginalText     string    `json:"originalText" bson:"originalText"`
	Summary          string    `json:"summary,omitempty" bson:"summary,omitempty"`
	FileType         string    `json:"fileType" bson:"fileType"`
	MimeType         string    `json:"mimeType" bson:"mimeType"`
	ProcessingMethod string    `json:"processingMethod" bson:"processingMethod"`
	FileName         string    `json:"fileName" bson:"fileName"`
	SizeBytes        int64     `json:"sizeBytes" bson:"sizeBytes"`
	StorageKey       string    `json:"storageKey" bson:"storageKey"`
	FileURL          string    `json:"fileUrl" bson:"fileUrl"`
	Tags             []string  `json:"tags" bson:"tags"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}
