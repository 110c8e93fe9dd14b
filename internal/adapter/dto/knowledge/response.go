package knowledge

import "time"

// UploadResponse is returned after a file is stored
type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
}

// DocumentResponse describes one knowledge-base document
type DocumentResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	URL          string    `json:"url"`
}

// DocumentListResponse lists the knowledge base
type DocumentListResponse struct {
	Total     int                `json:"total"`
	Documents []DocumentResponse `json:"documents"`
}

// AnalysisResponse summarizes the knowledge base
type AnalysisResponse struct {
	TotalFiles int                `json:"totalFiles"`
	TotalSize  int64              `json:"totalSize"`
	Files      []DocumentResponse `json:"files"`
}
