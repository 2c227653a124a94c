package handler

type ErrorResponse struct {
	Error string `json:"error"`
}
