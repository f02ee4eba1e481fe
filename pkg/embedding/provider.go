package embedding

// Task types hint the provider how the embedding will be used. Providers
// that do not distinguish (Ollama) ignore the hint.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Provider generates dense vector embeddings for text.
type Provider interface {
	Generate(text string, taskType string) (*Response, error)
}

type Response struct {
	Embedding ResponseEmbedding `json:"embedding"`
}

type ResponseEmbedding struct {
	Values []float32 `json:"values"`
}
