package knowledge

// DeleteDocumentRequest identifies a knowledge-base document by file name
type DeleteDocumentRequest struct {
	ID string `param:"id" validate:"required,excludesall=/"`
}
