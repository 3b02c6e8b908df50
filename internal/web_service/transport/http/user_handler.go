package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
	"github.com/messageinabottle/golang_services/internal/web_service/forms"
	"github.com/messageinabottle/golang_services/internal/web_service/middleware"
)

// UserService is the part of the user service the account pages use.
type UserService interface {
	CreateUser(ctx context.Context, u domain.NewUser) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	SearchUsers(ctx context.Context, input string) ([]domain.User, error)
	UpdateUser(ctx context.Context, id int64, upd domain.UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ReportUser(ctx context.Context, email string) (*domain.User, error)
}

// UserHandler serves registration, profile, user listing and reports.
type UserHandler struct {
	users     UserService
	sessions  SessionManager
	validator *forms.Validator
	render    *Renderer
	maxUpload int64
	logger    *slog.Logger
}

func NewUserHandler(users UserService, sessions SessionManager, validator *forms.Validator, render *Renderer, maxUpload int64, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		sessions:  sessions,
		validator: validator,
		render:    render,
		maxUpload: maxUpload,
		logger:    logger.With("handler", "users"),
	}
}

// RegisterRoutes registers the public account routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/register", h.showRegister)
	r.Post("/register", h.handleRegister)
	r.Get("/users/report/{email}", h.showReport)
	r.Post("/users/report/{email}", h.handleReport)
}

// RegisterProtectedRoutes registers routes that need a session.
func (h *UserHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/profile", h.showProfile)
	r.Post("/profile", h.handleProfile)
	r.Get("/delete", h.handleDelete)
	r.Get("/users", h.listUsers)
}

func (h *UserHandler) showRegister(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render.HTML(w, r, http.StatusOK, "register", registerView{Photo: forms.DefaultProfilePhoto, Suggest: suggestBadwords})
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	form, err := forms.DecodeUser(w, r, h.maxUpload)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	view := registerView{Form: form, Photo: forms.DefaultProfilePhoto, Suggest: suggestBadwords}
	if err := h.validator.Validate(r.Context(), form); err != nil {
		if !asValidation(err, &view.Errors) {
			h.render.Error(w, r, err)
			return
		}
		h.render.HTML(w, r, http.StatusOK, "register", view)
		return
	}
	if len(form.Photo) > 0 {
		view.Photo = forms.PhotoDataURI(form.Photo)
	}

	created, err := h.users.CreateUser(r.Context(), domain.NewUser{
		Email:     form.Email,
		Password:  form.Password,
		Firstname: form.Firstname,
		Lastname:  form.Lastname,
		Birthdate: form.BirthdateISO(),
		Photo:     view.Photo,
		Badwords:  strings.Join(domain.SplitList(form.Badwords), ","),
	})
	if errors.Is(err, domain.ErrEmailTaken) {
		view.EmailError = textEmailTaken
		h.render.HTML(w, r, http.StatusOK, "register", view)
		return
	}
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "User registered", "user_id", created.ID)
	view.JustRegistered = textJustRegistered
	h.render.HTML(w, r, http.StatusOK, "register", view)
}

func (h *UserHandler) showProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	h.render.HTML(w, r, http.StatusOK, "profile", profileView{Form: forms.ProfileFormFromUser(user), Photo: profilePhoto(user)})
}

func (h *UserHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	form, err := forms.DecodeProfile(w, r, h.maxUpload)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	view := profileView{Form: form, Photo: profilePhoto(user)}
	if err := h.validator.Validate(r.Context(), form); err != nil {
		if !asValidation(err, &view.Errors) {
			h.render.Error(w, r, err)
			return
		}
		h.render.HTML(w, r, http.StatusOK, "profile", view)
		return
	}

	photo := user.Photo
	if len(form.Photo) > 0 {
		photo = forms.PhotoDataURI(form.Photo)
	}
	updated, err := h.users.UpdateUser(r.Context(), user.ID, domain.UserUpdate{
		Password:  form.Password,
		Firstname: form.Firstname,
		Lastname:  form.Lastname,
		Birthdate: form.BirthdateISO(),
		Photo:     photo,
		Badwords:  strings.Join(domain.SplitList(form.Badwords), ","),
		Blacklist: strings.Join(domain.SplitList(form.Blacklist), ","),
	})
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Profile updated", "user_id", user.ID)
	view.Form = forms.ProfileFormFromUser(updated)
	view.Photo = profilePhoto(updated)
	view.Notice = textProfileUpdated
	h.render.HTML(w, r, http.StatusOK, "profile", view)
}

// handleDelete ends the session, then deletes the account.
func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if err := h.sessions.End(w, r); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to end session", "error", err)
	}
	if err := h.users.DeleteUser(r.Context(), user.ID); err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "User deleted", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	var (
		users []domain.User
		err   error
	)
	if search != "" {
		users, err = h.users.SearchUsers(r.Context(), search)
	} else {
		users, err = h.users.GetAllUsers(r.Context())
	}
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.HTML(w, r, http.StatusOK, "users", usersView{Users: users, Search: search})
}

func (h *UserHandler) showReport(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	h.render.HTML(w, r, http.StatusOK, "report", reportView{Email: email, Form: forms.ReportForm{Email: email}})
}

func (h *UserHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	form, err := forms.DecodeReport(w, r)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	form.Email = chi.URLParam(r, "email")
	view := reportView{Email: form.Email, Form: form}
	if err := h.validator.Validate(r.Context(), form); err != nil {
		if !asValidation(err, &view.Errors) {
			h.render.Error(w, r, err)
			return
		}
		h.render.HTML(w, r, http.StatusOK, "report", view)
		return
	}

	_, err = h.users.ReportUser(r.Context(), form.Email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		view.Problem = textUserNotFound
	case err != nil:
		h.render.Error(w, r, err)
		return
	default:
		h.logger.InfoContext(r.Context(), "User reported", "email", form.Email, "reason", form.Reason)
		view.Notice = textUserReported
	}
	h.render.HTML(w, r, http.StatusOK, "report", view)
}

func profilePhoto(u *domain.User) string {
	if u == nil || u.Photo == "" {
		return forms.DefaultProfilePhoto
	}
	return u.Photo
}
