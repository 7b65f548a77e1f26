package response

import "github.com/vietanh2810/sorteo-api/internal/domain"

type ImportResponse struct {
	Message string `json:"message"`
	domain.ImportResult
}
