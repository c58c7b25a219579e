package types

import "io"

// Chunk is a stored piece of a manual together with its vector.
type Chunk struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Embedding []float32         `json:"-"`
	Metadata  map[string]string `json:"metadata"`
}

// QueryResult holds the nearest documents for one query embedding, closest first.
type QueryResult struct {
	IDs       []string            `json:"ids"`
	Documents []string            `json:"documents"`
	Metadatas []map[string]string `json:"metadatas"`
	Distances []float32           `json:"distances"`
}

func (r *QueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Documents)
}

// SourceFile is an uploaded or local file waiting for text extraction.
type SourceFile struct {
	Name    string
	Content io.Reader
}

const MetadataTitle = "title"

// SearchRequest asks for the stored chunks of Manual nearest to Query.
type SearchRequest struct {
	Manual string `json:"manual"`
	Query  string `json:"query"`
	Limit  int    `json:"limit"`
}

type SearchHit struct {
	ID       string  `json:"id"`
	Content  string  `json:"content"`
	Title    string  `json:"title"`
	Distance float32 `json:"distance"`
}

type SearchResponse struct {
	Results []SearchHit `json:"results"`
}
