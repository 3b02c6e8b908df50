package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
	"github.com/messageinabottle/golang_services/internal/web_service/forms"
	"github.com/messageinabottle/golang_services/internal/web_service/middleware"
)

// LotteryService plays the monthly draw.
type LotteryService interface {
	Play(ctx context.Context, userID int64, number int) error
	HasPlayed(ctx context.Context, userID int64) (bool, error)
}

type LotteryHandler struct {
	lottery   LotteryService
	validator *forms.Validator
	render    *Renderer
	logger    *slog.Logger
}

func NewLotteryHandler(lottery LotteryService, validator *forms.Validator, render *Renderer, logger *slog.Logger) *LotteryHandler {
	return &LotteryHandler{lottery: lottery, validator: validator, render: render, logger: logger.With("handler", "lottery")}
}

func (h *LotteryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/Lottery", h.show)
	r.Post("/Lottery", h.play)
}

func (h *LotteryHandler) show(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	played, err := h.lottery.HasPlayed(r.Context(), user.ID)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.HTML(w, r, http.StatusOK, "lottery", lotteryView{Played: played})
}

func (h *LotteryHandler) play(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	form, err := forms.DecodeLottery(w, r)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	if err := h.validator.Validate(r.Context(), form); err != nil {
		var fieldErrs forms.ValidationErrors
		if !asValidation(err, &fieldErrs) {
			h.render.Error(w, r, err)
			return
		}
		played, err := h.lottery.HasPlayed(r.Context(), user.ID)
		if err != nil {
			h.render.Error(w, r, err)
			return
		}
		h.render.HTML(w, r, http.StatusOK, "lottery", lotteryView{Played: played, Number: form.Number, Error: fieldErrs.For("number")})
		return
	}

	err = h.lottery.Play(r.Context(), user.ID, form.Number)
	if errors.Is(err, domain.ErrNumberNotAllowed) {
		h.render.HTML(w, r, http.StatusOK, "lottery", lotteryView{Number: form.Number, Error: textNumberNotAllowed})
		return
	}
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Lottery played", "user_id", user.ID, "number", form.Number)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
