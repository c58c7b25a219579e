package types

type ErrorResponse struct {
	Error string `json:"error"`
}

type AnswerData struct {
	OutputText string `json:"output_text"`
}

// AnswerResponse is pushed back to chat clients and returned by /ask.
type AnswerResponse struct {
	Status int        `json:"status"`
	Data   AnswerData `json:"data"`
	Msg    string     `json:"msg"`
}

type UploadResponse struct {
	Message   string `json:"message"`
	NumChunks int    `json:"num_chunks"`
}

type ExtractResponse struct {
	Text string `json:"text"`
}

type ManualsResponse struct {
	ManualTitles []string `json:"manual_titles"`
}

type ManualResponse struct {
	Title     string          `json:"title"`
	NumChunks int             `json:"num_chunks"`
	Uploads   []*UploadRecord `json:"uploads"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Connection string `json:"connection"`
}
