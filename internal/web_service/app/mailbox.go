package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
)

// MailboxStore is the part of the message service the mailbox pages use.
type MailboxStore interface {
	GetFolder(ctx context.Context, folder domain.Folder, email string) ([]domain.Message, error)
	Search(ctx context.Context, email string, filter domain.SearchFilter) (*domain.SearchResult, error)
	GetMessageByID(ctx context.Context, id int64) (*domain.Message, error)
	UpdateMessage(ctx context.Context, msg domain.Message) (*domain.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
	GetNotifications(ctx context.Context, email string) (*domain.Notifications, error)
}

// FolderPage is one page of a folder listing.
type FolderPage struct {
	Folder   domain.Folder
	Filter   domain.SearchFilter
	Messages []MessageView
	Page     int
	Pages    int
	Total    int
}

func (p *FolderPage) HasPrev() bool { return p.Page > 1 }
func (p *FolderPage) HasNext() bool { return p.Page < p.Pages }
func (p *FolderPage) PrevPage() int { return p.Page - 1 }
func (p *FolderPage) NextPage() int { return p.Page + 1 }

// Overview counts the messages of every folder.
type Overview struct {
	Counts map[domain.Folder]int
}

// NotificationCount is shown on the home page.
type NotificationCount struct {
	Inbox int
	Sent  int
}

func (n NotificationCount) Total() int { return n.Inbox + n.Sent }

type Mailbox struct {
	store    MailboxStore
	pageSize int
	logger   *slog.Logger
}

func NewMailbox(store MailboxStore, pageSize int, logger *slog.Logger) *Mailbox {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Mailbox{store: store, pageSize: pageSize, logger: logger.With("component", "mailbox")}
}

// List returns page (1-based, clamped) of folder for owner, narrowed by filter.
// Listing the sent folder consumes read receipts: every shown message with
// read=true and sent=1 is moved to sent=2 and persisted.
func (m *Mailbox) List(ctx context.Context, owner string, folder domain.Folder, filter domain.SearchFilter, page int) (*FolderPage, error) {
	msgs, err := m.fetch(ctx, owner, folder, filter)
	if err != nil {
		return nil, err
	}
	if folder == domain.FolderInbox {
		msgs = visible(msgs)
	}

	total := len(msgs)
	pages := (total + m.pageSize - 1) / m.pageSize
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * m.pageSize
	end := min(start+m.pageSize, total)

	views := newMessageViews(msgs[start:end], folder)
	if folder == domain.FolderSent {
		if err := m.consumeReadReceipts(ctx, views); err != nil {
			return nil, err
		}
	}

	return &FolderPage{
		Folder:   folder,
		Filter:   filter,
		Messages: views,
		Page:     page,
		Pages:    pages,
		Total:    total,
	}, nil
}

func (m *Mailbox) fetch(ctx context.Context, owner string, folder domain.Folder, filter domain.SearchFilter) ([]domain.Message, error) {
	if filter.IsZero() || folder == domain.FolderDraft {
		msgs, err := m.store.GetFolder(ctx, folder, owner)
		if err != nil {
			return nil, fmt.Errorf("listing %s of %s: %w", folder, owner, err)
		}
		if folder == domain.FolderDraft && !filter.IsZero() {
			msgs = filterLocally(msgs, filter)
		}
		return msgs, nil
	}

	res, err := m.store.Search(ctx, owner, filter)
	if err != nil {
		return nil, fmt.Errorf("searching %s of %s: %w", folder, owner, err)
	}
	switch folder {
	case domain.FolderInbox:
		return res.Inbox, nil
	case domain.FolderSent:
		return res.Sent, nil
	default:
		return res.Scheduled, nil
	}
}

func (m *Mailbox) consumeReadReceipts(ctx context.Context, views []MessageView) error {
	for i := range views {
		v := &views[i]
		if !v.Read || v.Sent != domain.SentDone {
			continue
		}
		v.Sent = domain.SentNotified
		if _, err := m.store.UpdateMessage(ctx, v.Message); err != nil {
			return fmt.Errorf("consuming read receipt of message %d: %w", v.ID, err)
		}
		v.ReadNotice = true
		m.logger.DebugContext(ctx, "Read receipt consumed", "message_id", v.ID)
	}
	return nil
}

// Open fetches message id from folder, checking that owner may see it there.
// Opening an unread inbox message marks it read.
func (m *Mailbox) Open(ctx context.Context, owner string, folder domain.Folder, id int64) (*MessageView, error) {
	msg, err := m.owned(ctx, owner, folder, id)
	if err != nil {
		return nil, err
	}
	if folder == domain.FolderInbox && !msg.Read {
		msg.Read = true
		if _, err := m.store.UpdateMessage(ctx, *msg); err != nil {
			return nil, fmt.Errorf("marking message %d read: %w", id, err)
		}
	}
	v := NewMessageView(*msg, folder)
	return &v, nil
}

// Get returns the stored message of folder without side effects.
func (m *Mailbox) Get(ctx context.Context, owner string, folder domain.Folder, id int64) (*domain.Message, error) {
	return m.owned(ctx, owner, folder, id)
}

// Delete removes message id from folder. Inbox messages are only flagged
// deleted so the sender keeps their copy; drafts are removed. Sent and
// scheduled messages cannot be deleted.
func (m *Mailbox) Delete(ctx context.Context, owner string, folder domain.Folder, id int64) error {
	switch folder {
	case domain.FolderInbox, domain.FolderDraft:
	default:
		return domain.ErrOperationNotAllowed
	}
	msg, err := m.owned(ctx, owner, folder, id)
	if err != nil {
		return err
	}
	if folder == domain.FolderDraft {
		if err := m.store.DeleteMessage(ctx, id); err != nil {
			return fmt.Errorf("deleting draft %d: %w", id, err)
		}
		m.logger.InfoContext(ctx, "Draft deleted", "message_id", id)
		return nil
	}
	msg.Deleted = true
	if _, err := m.store.UpdateMessage(ctx, *msg); err != nil {
		return fmt.Errorf("deleting message %d from inbox: %w", id, err)
	}
	m.logger.InfoContext(ctx, "Inbox message deleted", "message_id", id)
	return nil
}

func (m *Mailbox) owned(ctx context.Context, owner string, folder domain.Folder, id int64) (*domain.Message, error) {
	msg, err := m.store.GetMessageByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching message %d: %w", id, err)
	}
	if !belongsTo(msg, owner, folder) {
		return nil, fmt.Errorf("message %d in %s of %s: %w", id, folder, owner, domain.ErrNotFound)
	}
	return msg, nil
}

func belongsTo(msg *domain.Message, owner string, folder domain.Folder) bool {
	switch folder {
	case domain.FolderInbox:
		return strings.EqualFold(msg.Receiver, owner) && !msg.Deleted && !msg.Draft
	case domain.FolderDraft:
		return strings.EqualFold(msg.Sender, owner) && msg.Draft
	case domain.FolderSent, domain.FolderScheduled:
		return strings.EqualFold(msg.Sender, owner) && !msg.Draft
	}
	return false
}

// Notifications counts unread inbox messages and unseen read receipts.
func (m *Mailbox) Notifications(ctx context.Context, owner string) (NotificationCount, error) {
	n, err := m.store.GetNotifications(ctx, owner)
	if err != nil {
		return NotificationCount{}, fmt.Errorf("fetching notifications of %s: %w", owner, err)
	}
	return NotificationCount{Inbox: len(n.Inbox), Sent: len(n.Sent)}, nil
}

// Overview counts every folder of owner, one call per folder.
func (m *Mailbox) Overview(ctx context.Context, owner string) (*Overview, error) {
	ov := &Overview{Counts: make(map[domain.Folder]int, len(domain.Folders))}
	for _, f := range domain.Folders {
		msgs, err := m.store.GetFolder(ctx, f, owner)
		if err != nil {
			return nil, fmt.Errorf("counting %s of %s: %w", f, owner, err)
		}
		if f == domain.FolderInbox {
			msgs = visible(msgs)
		}
		ov.Counts[f] = len(msgs)
	}
	return ov, nil
}

func visible(msgs []domain.Message) []domain.Message {
	out := msgs[:0:0]
	for _, m := range msgs {
		if !m.Deleted {
			out = append(out, m)
		}
	}
	return out
}

// filterLocally applies filter to drafts, which the search endpoint does not cover.
func filterLocally(msgs []domain.Message, f domain.SearchFilter) []domain.Message {
	var out []domain.Message
	for _, m := range msgs {
		if f.Body != "" && !strings.Contains(strings.ToLower(m.Body), strings.ToLower(f.Body)) {
			continue
		}
		if f.Sender != "" && !strings.Contains(strings.ToLower(m.Receiver), strings.ToLower(f.Sender)) {
			continue
		}
		if f.Date != "" && !strings.HasPrefix(m.Timestamp, f.Date) {
			continue
		}
		out = append(out, m)
	}
	return out
}
