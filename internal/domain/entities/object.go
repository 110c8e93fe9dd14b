package entities

import (
	"path"
	"time"
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Name returns the last path element of the key
func (o ObjectInfo) Name() string {
	return path.Base(o.Key)
}

// KnowledgeDocument is a knowledge-base object with a presigned access URL
type KnowledgeDocument struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	URL          string    `json:"url"`
}

// KnowledgeAnalysis summarizes the knowledge base
type KnowledgeAnalysis struct {
	TotalFiles int                 `json:"totalFiles"`
	TotalSize  int64               `json:"totalSize"`
	Files      []KnowledgeDocument `json:"files"`
}
