package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/messageinabottle/golang_services/internal/web_service/app"
	"github.com/messageinabottle/golang_services/internal/web_service/domain"
	"github.com/messageinabottle/golang_services/internal/web_service/forms"
	"github.com/messageinabottle/golang_services/internal/web_service/middleware"
)

// MessageLookup fetches a stored message for reply and forward.
type MessageLookup interface {
	GetMessageByID(ctx context.Context, id int64) (*domain.Message, error)
}

// MessageHandler serves the compose page in its four flavours: new message,
// reply, forward and draft edit.
type MessageHandler struct {
	composer  *app.Composer
	mailbox   *app.Mailbox
	messages  MessageLookup
	validator *forms.Validator
	render    *Renderer
	maxUpload int64
	now       func() time.Time
	logger    *slog.Logger
}

func NewMessageHandler(composer *app.Composer, mailbox *app.Mailbox, messages MessageLookup, validator *forms.Validator, render *Renderer, maxUpload int64, now func() time.Time, logger *slog.Logger) *MessageHandler {
	if now == nil {
		now = time.Now
	}
	return &MessageHandler{
		composer:  composer,
		mailbox:   mailbox,
		messages:  messages,
		validator: validator,
		render:    render,
		maxUpload: maxUpload,
		now:       now,
		logger:    logger.With("handler", "message"),
	}
}

// RegisterRoutes registers the compose routes; all need a session.
// The static mailbox segments take precedence over /mailbox/{folder}/{id}.
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/message/", h.newMessage)
	r.Post("/message/", h.newMessage)
	r.Get("/message/{receiver}", h.newMessage)
	r.Post("/message/{receiver}", h.newMessage)
	r.Get("/mailbox/forward/{id}", h.forward)
	r.Post("/mailbox/forward/{id}", h.forward)
	r.Get("/mailbox/reply/{id}", h.reply)
	r.Post("/mailbox/reply/{id}", h.reply)
	r.Get("/mailbox/draft/{id}", h.editDraft)
	r.Post("/mailbox/draft/{id}", h.editDraft)
}

// composeTarget describes what a compose page starts from.
type composeTarget struct {
	title   string
	action  string
	prefill forms.MessageForm
	// draft is the stored draft being edited.
	draft *domain.Message
	// photo is carried over from a forwarded message unless the form changes it.
	photo string
}

func (h *MessageHandler) newMessage(w http.ResponseWriter, r *http.Request) {
	receiver := chi.URLParam(r, "receiver")
	action := "/message/"
	if receiver != "" {
		action += receiver
	}
	h.compose(w, r, composeTarget{
		title:   "New message",
		action:  action,
		prefill: forms.MessageForm{Receiver: receiver},
	})
}

func (h *MessageHandler) forward(w http.ResponseWriter, r *http.Request) {
	orig, ok := h.participantMessage(w, r)
	if !ok {
		return
	}
	prefill := forms.MessageFormFromMessage(orig)
	prefill.Receiver = ""
	prefill.Date, prefill.Time = "", ""
	h.compose(w, r, composeTarget{
		title:   "Forward message",
		action:  "/mailbox/forward/" + strconv.FormatInt(orig.ID, 10),
		prefill: prefill,
		photo:   orig.Photo,
	})
}

func (h *MessageHandler) reply(w http.ResponseWriter, r *http.Request) {
	orig, ok := h.participantMessage(w, r)
	if !ok {
		return
	}
	h.compose(w, r, composeTarget{
		title:   "Reply",
		action:  "/mailbox/reply/" + strconv.FormatInt(orig.ID, 10),
		prefill: forms.MessageForm{Receiver: orig.Sender},
	})
}

func (h *MessageHandler) editDraft(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.render.Error(w, r, domain.ErrNotFound)
		return
	}
	user := middleware.CurrentUser(r.Context())
	draft, err := h.mailbox.Get(r.Context(), user.Email, domain.FolderDraft, id)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.compose(w, r, composeTarget{
		title:   "Draft",
		action:  "/mailbox/draft/" + strconv.FormatInt(id, 10),
		prefill: forms.MessageFormFromMessage(draft),
		draft:   draft,
	})
}

// participantMessage loads the {id} message if the user sent or received it,
// otherwise redirects to the mailbox.
func (h *MessageHandler) participantMessage(w http.ResponseWriter, r *http.Request) (*domain.Message, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/mailbox", http.StatusSeeOther)
		return nil, false
	}
	msg, err := h.messages.GetMessageByID(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		http.Redirect(w, r, "/mailbox", http.StatusSeeOther)
		return nil, false
	}
	if err != nil {
		h.render.Error(w, r, err)
		return nil, false
	}
	user := middleware.CurrentUser(r.Context())
	if !strings.EqualFold(msg.Sender, user.Email) && !strings.EqualFold(msg.Receiver, user.Email) {
		http.Redirect(w, r, "/mailbox", http.StatusSeeOther)
		return nil, false
	}
	return msg, true
}

func (h *MessageHandler) compose(w http.ResponseWriter, r *http.Request, target composeTarget) {
	view := composeView{
		Title:   target.title,
		Action:  target.action,
		Form:    target.prefill,
		Suggest: suggestRecipients,
		Photo:   forms.Base64DataURI(target.photo),
	}
	if target.draft != nil {
		view.DraftID = target.draft.ID
		view.Photo = forms.Base64DataURI(target.draft.Photo)
	}
	if r.Method != http.MethodPost {
		h.render.HTML(w, r, http.StatusOK, "message", view)
		return
	}

	form, err := forms.DecodeMessage(w, r, h.maxUpload, h.now())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	user := middleware.CurrentUser(r.Context())

	if target.draft != nil && r.PostFormValue("action") == "delete" {
		if err := h.mailbox.Delete(r.Context(), user.Email, domain.FolderDraft, target.draft.ID); err != nil {
			h.render.Error(w, r, err)
			return
		}
		http.Redirect(w, r, "/mailbox/draft", http.StatusSeeOther)
		return
	}

	view.Form = form
	if err := h.validator.Validate(r.Context(), form); err != nil {
		if !asValidation(err, &view.Errors) {
			h.render.Error(w, r, err)
			return
		}
		if view.Errors.For("date") != "" || view.Errors.For("time") != "" {
			view.DateError = forms.MessageDateError
		}
		h.render.HTML(w, r, http.StatusOK, "message", view)
		return
	}

	msg := form.ToMessage(user, target.draft)
	if target.draft == nil && target.photo != "" && form.Confirm == "" {
		msg.Photo = target.photo
	}
	intent := app.IntentSchedule
	if form.Choice == forms.ChoiceDraft {
		intent = app.IntentDraft
	}

	res, err := h.composer.Submit(r.Context(), msg, target.draft, intent)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Message submitted", "sender_id", user.ID, "outcome", res.Outcome.String())
	view.apply(res)
	view.Photo = forms.Base64DataURI(msg.Photo)
	switch {
	case res.Outcome == app.OutcomeDraft && res.Saved != nil:
		view.DraftID = res.Saved.ID
	case res.Outcome == app.OutcomeScheduled, res.Outcome == app.OutcomeForbiddenWords:
		// the stored draft was converted, nothing is left to delete
		view.DraftID = 0
	}
	h.render.HTML(w, r, http.StatusOK, "message", view)
}
