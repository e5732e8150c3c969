package entity

// RetrievedDocument is one retrieval hit. Score follows the retrieval
// service's lower-is-closer distance convention; the displayed relevance is
// 1/(1+score). A nil Score means the service reported none.
type RetrievedDocument struct {
	DocumentName string   `json:"documentName"`
	Content      string   `json:"content"`
	Score        *float64 `json:"score,omitempty"`
}

// Usable reports whether the document may appear in an assembled context
// block. Incomplete hits are dropped, never silently substituted.
func (d *RetrievedDocument) Usable() bool {
	return d != nil && d.DocumentName != "" && d.Content != ""
}

// RetrievalQueryRequest is the wire payload for the retrieval service's
// /query endpoint.
type RetrievalQueryRequest struct {
	UserID              string   `json:"user_id"`
	Query               string   `json:"query"`
	K                   int      `json:"k"`
	TargetOriginalNames []string `json:"target_original_names,omitempty"`
}

type RetrievalQueryResponse struct {
	RelevantDocs []RetrievedDocument `json:"relevantDocs"`
}

// RetrievalHealthResponse mirrors the retrieval service's /health payload.
// Only the fields the backend reports on are decoded.
type RetrievalHealthResponse struct {
	Status             string `json:"status"`
	EmbeddingModelType string `json:"embedding_model_type"`
	EmbeddingModelName string `json:"embedding_model_name"`
	DefaultIndexLoaded bool   `json:"default_index_loaded"`
	Message            string `json:"message"`
}
