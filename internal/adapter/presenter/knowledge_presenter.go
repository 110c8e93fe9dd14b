package presenter

import (
	"github.com/johnquangdev/call-insights/internal/adapter/dto/knowledge"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// ToDocumentResponse converts a KnowledgeDocument entity to its DTO
func ToDocumentResponse(d entities.KnowledgeDocument) knowledge.DocumentResponse {
	return knowledge.DocumentResponse{
		ID:           d.ID,
		Name:         d.Name,
		Size:         d.Size,
		LastModified: d.LastModified,
		URL:          d.URL,
	}
}

// ToDocumentListResponse converts a document listing
func ToDocumentListResponse(docs []entities.KnowledgeDocument) *knowledge.DocumentListResponse {
	return &knowledge.DocumentListResponse{
		Total:     len(docs),
		Documents: toDocumentResponses(docs),
	}
}

// ToAnalysisResponse converts a knowledge-base summary
func ToAnalysisResponse(a *entities.KnowledgeAnalysis) *knowledge.AnalysisResponse {
	if a == nil {
		return nil
	}
	return &knowledge.AnalysisResponse{
		TotalFiles: a.TotalFiles,
		TotalSize:  a.TotalSize,
		Files:      toDocumentResponses(a.Files),
	}
}

func toDocumentResponses(docs []entities.KnowledgeDocument) []knowledge.DocumentResponse {
	out := make([]knowledge.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, ToDocumentResponse(d))
	}
	return out
}
