package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/sorteo-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/sorteo-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/sorteo-api/internal/domain"
)

type ParticipantImporter interface {
	Import(ctx context.Context, file io.ReadCloser, raffleID uint) domain.ImportResult
}

type ParticipantHandler struct {
	importer    ParticipantImporter
	maxFileSize int64
}

func NewParticipantHandler(importer ParticipantImporter, maxFileSize int64) *ParticipantHandler {
	return &ParticipantHandler{
		importer:    importer,
		maxFileSize: maxFileSize,
	}
}

// HandleImport godoc
// @Summary      Import participants from a CSV file
// @Description  Streams the file into the participants of the raffle. Comma and semicolon delimiters are detected from the header.
// @Tags         participants
// @Accept       multipart/form-data
// @Produce      json
// @Param        file       formData  file  true  "CSV file"
// @Param        raffle_id  formData  int   true  "Raffle ID"
// @Success      200        {object}  response.ImportResponse
// @Failure      400        {object}  response.ImportResponse
// @Failure      413        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /participants/import [post]
func (h *ParticipantHandler) HandleImport(ctx *gin.Context) {
	var input request.ImportParticipantsRequest
	if err := ctx.ShouldBind(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("file is required")))
		return
	}

	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		response.RenderErr(ctx, response.ErrRequestTooLarge(h.maxFileSize))
		return
	}

	file, err := header.Open()
	if err != nil {
		err = fmt.Errorf("HandleImport -> header.Open -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	result := h.importer.Import(ctx.Request.Context(), file, input.ID())

	status := http.StatusOK
	if result.Status == domain.ImportStatusError {
		status = http.StatusBadRequest
	}

	ctx.JSON(status, response.ImportResponse{
		Message:      importMessage(result),
		ImportResult: result,
	})
}

// importMessage tells async callers that only the hand-off happened; the
// inserted and failed counts are logged by the chunk workers under batch_id.
func importMessage(result domain.ImportResult) string {
	switch {
	case result.Status == domain.ImportStatusError:
		return "import failed"
	case result.Mode == domain.ImportModeAsync:
		return fmt.Sprintf("import queued in %d chunks, follow batch_id %s", result.Chunks, result.BatchID)
	default:
		return "import finished"
	}
}
