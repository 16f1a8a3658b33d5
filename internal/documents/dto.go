package documents

import "time"

// DocumentResponse is the JSON view of a stored document.
type DocumentResponse struct {
	DocumentID string    `json:"documentId"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	Checksum   string    `json:"sha256,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
	ContentURL string    `json:"contentUrl"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		MimeType:   doc.MimeType,
		SizeBytes:  doc.SizeBytes,
		Checksum:   doc.Checksum,
		UploadedAt: doc.CreatedAt,
		ContentURL: "/api/v1/documents/" + doc.ID + "/content",
	}
}
