package types

// UploadRecord is the audit entry kept for every successful ingestion.
type UploadRecord struct {
	ID        string   `json:"id" bson:"_id,omitempty"`
	Title     string   `json:"title" bson:"title"`
	Files     []string `json:"files" bson:"files"`
	NumChunks int      `json:"num_chunks" bson:"num_chunks"`
	CreatedAt int64    `json:"created_at" bson:"created_at"`
}
