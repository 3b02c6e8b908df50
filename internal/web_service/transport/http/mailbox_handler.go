package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/messageinabottle/golang_services/internal/web_service/app"
	"github.com/messageinabottle/golang_services/internal/web_service/domain"
	"github.com/messageinabottle/golang_services/internal/web_service/middleware"
)

// MailboxHandler serves folder listings and single messages.
type MailboxHandler struct {
	mailbox *app.Mailbox
	render  *Renderer
	logger  *slog.Logger
}

func NewMailboxHandler(mailbox *app.Mailbox, render *Renderer, logger *slog.Logger) *MailboxHandler {
	return &MailboxHandler{mailbox: mailbox, render: render, logger: logger.With("handler", "mailbox")}
}

// RegisterRoutes registers the mailbox routes; all need a session.
func (h *MailboxHandler) RegisterRoutes(r chi.Router) {
	r.Get("/mailbox", h.overview)
	r.Get("/mailbox/{folder}", h.listFolder)
	r.Get("/mailbox/{folder}/{id}", h.showMessage)
	r.Post("/mailbox/{folder}/{id}", h.messageAction)
}

func (h *MailboxHandler) overview(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	ov, err := h.mailbox.Overview(r.Context(), user.Email)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	view := overviewView{Folders: make([]folderCount, 0, len(domain.Folders))}
	for _, f := range domain.Folders {
		view.Folders = append(view.Folders, folderCount{Name: f, Count: ov.Counts[f]})
	}
	h.render.HTML(w, r, http.StatusOK, "mailbox", view)
}

func (h *MailboxHandler) listFolder(w http.ResponseWriter, r *http.Request) {
	folder, ok := domain.ParseFolder(chi.URLParam(r, "folder"))
	if !ok {
		h.render.Error(w, r, domain.ErrNotFound)
		return
	}
	q := r.URL.Query()
	filter := domain.SearchFilter{
		Body:   strings.TrimSpace(q.Get("msg")),
		Sender: strings.TrimSpace(q.Get("user")),
		Date:   strings.TrimSpace(q.Get("date")),
	}
	pageNum, _ := strconv.Atoi(q.Get("page"))

	user := middleware.CurrentUser(r.Context())
	page, err := h.mailbox.List(r.Context(), user.Email, folder, filter, pageNum)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.HTML(w, r, http.StatusOK, "folder", page)
}

func (h *MailboxHandler) showMessage(w http.ResponseWriter, r *http.Request) {
	folder, id, ok := folderAndID(r)
	if !ok {
		h.render.Error(w, r, domain.ErrNotFound)
		return
	}
	user := middleware.CurrentUser(r.Context())
	msg, err := h.mailbox.Open(r.Context(), user.Email, folder, id)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.HTML(w, r, http.StatusOK, "message_view", messagePageView{
		Message:   msg,
		Folder:    folder,
		CanDelete: folder == domain.FolderInbox,
	})
}

func (h *MailboxHandler) messageAction(w http.ResponseWriter, r *http.Request) {
	folder, id, ok := folderAndID(r)
	if !ok {
		h.render.Error(w, r, domain.ErrNotFound)
		return
	}
	if r.PostFormValue("action") != "delete" {
		h.render.Error(w, r, domain.ErrOperationNotAllowed)
		return
	}
	user := middleware.CurrentUser(r.Context())
	if err := h.mailbox.Delete(r.Context(), user.Email, folder, id); err != nil {
		h.render.Error(w, r, err)
		return
	}
	http.Redirect(w, r, "/mailbox/"+string(folder), http.StatusSeeOther)
}

func folderAndID(r *http.Request) (domain.Folder, int64, bool) {
	folder, ok := domain.ParseFolder(chi.URLParam(r, "folder"))
	if !ok {
		return "", 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 0 {
		return "", 0, false
	}
	return folder, id, true
}
