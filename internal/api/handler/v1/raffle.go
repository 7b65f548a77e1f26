package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/sorteo-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/sorteo-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/sorteo-api/internal/domain"
	"github.com/vietanh2810/sorteo-api/internal/service"
)

type DrawService interface {
	Draw(ctx context.Context, raffleID uint) (domain.DrawResult, error)
	DrawActive(ctx context.Context) (domain.DrawResult, error)
}

type ResetService interface {
	Reset(ctx context.Context, raffleID *uint) (domain.ResetResult, error)
}

type RaffleService interface {
	ActiveRaffle(ctx context.Context) (domain.Raffle, error)
	Activate(ctx context.Context, id uint, active bool) (domain.Raffle, error)
}

type RaffleHandler struct {
	drawSvc   DrawService
	resetSvc  ResetService
	raffleSvc RaffleService
}

func NewRaffleHandler(drawSvc DrawService, resetSvc ResetService, raffleSvc RaffleService) *RaffleHandler {
	return &RaffleHandler{
		drawSvc:   drawSvc,
		resetSvc:  resetSvc,
		raffleSvc: raffleSvc,
	}
}

// Conditions a caller can fix themselves. Their message is returned as is.
var userFacingDrawErrs = []error{
	service.ErrNoActiveRaffle,
	service.ErrNoEligibleParticipants,
	service.ErrNoPrizes,
	service.ErrAllPrizesAwarded,
}

func drawErr(handler string, raffleID any, err error) *response.Err {
	if errors.Is(err, service.ErrRaffleNotFound) {
		return response.ErrNotFound("raffle", "id", raffleID)
	}

	for _, target := range userFacingDrawErrs {
		if errors.Is(err, target) {
			return response.ErrBadRequest(target)
		}
	}

	return response.ErrInternalServerError(fmt.Errorf("%s -> %w", handler, err))
}

func parseRaffleID(ctx *gin.Context) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param("raffleID"), 10, 32)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid raffle id %q", ctx.Param("raffleID")))
	}

	return uint(id), nil
}

// HandleDrawActive godoc
// @Summary      Draw a winner in the active raffle
// @Description  Picks one participant that has not won yet and awards the next prize position
// @Tags         raffles
// @Produce      json
// @Success      200  {object}  domain.DrawResult
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /raffles/draw [post]
func (h *RaffleHandler) HandleDrawActive(ctx *gin.Context) {
	result, err := h.drawSvc.DrawActive(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, drawErr("HandleDrawActive -> h.drawSvc.DrawActive", "active", err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleDraw godoc
// @Summary      Draw a winner in a raffle
// @Tags         raffles
// @Produce      json
// @Param        raffleID  path      int  true  "Raffle ID"
// @Success      200       {object}  domain.DrawResult
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /raffles/{raffleID}/draw [post]
func (h *RaffleHandler) HandleDraw(ctx *gin.Context) {
	raffleID, respErr := parseRaffleID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	result, err := h.drawSvc.Draw(ctx.Request.Context(), raffleID)
	if err != nil {
		response.RenderErr(ctx, drawErr("HandleDraw -> h.drawSvc.Draw", raffleID, err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleResetWinners godoc
// @Summary      Reset raffle winners
// @Description  Clears the won position of the winners of one raffle, or of every raffle when raffle_id is omitted
// @Tags         raffles
// @Produce      json
// @Param        raffle_id  query     int  false  "Raffle ID"
// @Success      200        {object}  domain.ResetResult
// @Failure      400        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /raffles/winners/reset [post]
func (h *RaffleHandler) HandleResetWinners(ctx *gin.Context) {
	var input request.ResetWinnersRequest
	if err := ctx.ShouldBindQuery(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.resetSvc.Reset(ctx.Request.Context(), input.Scope())
	if err != nil {
		err = fmt.Errorf("HandleResetWinners -> h.resetSvc.Reset -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleGetActiveRaffle godoc
// @Summary      Get the active raffle
// @Tags         raffles
// @Produce      json
// @Success      200  {object}  domain.Raffle
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /raffles/active [get]
func (h *RaffleHandler) HandleGetActiveRaffle(ctx *gin.Context) {
	raffle, err := h.raffleSvc.ActiveRaffle(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoActiveRaffle) {
			response.RenderErr(ctx, response.ErrNotFound("raffle", "active", true))
			return
		}

		err = fmt.Errorf("HandleGetActiveRaffle -> h.raffleSvc.ActiveRaffle -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, raffle)
}

// HandleActivateRaffle godoc
// @Summary      Activate or deactivate a raffle
// @Description  Activating a raffle deactivates every other raffle
// @Tags         raffles
// @Accept       json
// @Produce      json
// @Param        raffleID  path      int                            true  "Raffle ID"
// @Param        input     body      request.ActivateRaffleRequest  true  "Active flag"
// @Success      200       {object}  domain.Raffle
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /raffles/{raffleID}/activate [post]
func (h *RaffleHandler) HandleActivateRaffle(ctx *gin.Context) {
	raffleID, respErr := parseRaffleID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.ActivateRaffleRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	raffle, err := h.raffleSvc.Activate(ctx.Request.Context(), raffleID, *input.Active)
	if err != nil {
		if errors.Is(err, service.ErrRaffleNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("raffle", "id", raffleID))
			return
		}

		err = fmt.Errorf("HandleActivateRaffle -> h.raffleSvc.Activate -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, raffle)
}
