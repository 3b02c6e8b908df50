package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
)

// UserDirectory is the part of the user service the delivery pipeline reads.
type UserDirectory interface {
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	GetBlacklist(ctx context.Context, userID int64) ([]string, error)
	GetBadwords(ctx context.Context, userID int64) ([]string, error)
}

// MessageWriter persists composed messages.
type MessageWriter interface {
	CreateMessage(ctx context.Context, msg domain.Message) (*domain.Message, error)
	UpdateMessage(ctx context.Context, msg domain.Message) (*domain.Message, error)
}

// Intent is what the sender asked the compose form to do.
type Intent int

const (
	IntentSchedule Intent = iota
	IntentDraft
)

// Outcome tags a finished submission.
type Outcome int

const (
	OutcomeScheduled Outcome = iota
	OutcomeDraft
	OutcomeNotRegistered
	OutcomeBlacklisted
	OutcomeChangeBody
	OutcomeForbiddenWords
)

func (o Outcome) String() string {
	switch o {
	case OutcomeScheduled:
		return "scheduled"
	case OutcomeDraft:
		return "draft"
	case OutcomeNotRegistered:
		return "not_registered"
	case OutcomeBlacklisted:
		return "blacklisted"
	case OutcomeChangeBody:
		return "change_body"
	case OutcomeForbiddenWords:
		return "forbidden_words"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Texts shown to the sender for each outcome.
const (
	textScheduled      = "Scheduled!"
	textDraft          = "Draft!"
	textNotRegistered  = " not registered"
	textBlacklisted    = " doesn't want messages from you"
	textChangeBody     = "Change body!"
	textForbiddenWords = "Forbidden words for "
)

// Result describes what a submission did.
type Result struct {
	Outcome Outcome
	// Recipients named by the outcome: unregistered, blacklisting or excluded ones.
	Recipients []string
	// Delivered holds one stored record per recipient that received the message.
	Delivered []domain.Message
	// Saved is the stored draft for OutcomeDraft.
	Saved *domain.Message
}

// Rejected reports whether nothing was delivered or saved.
func (r *Result) Rejected() bool {
	switch r.Outcome {
	case OutcomeNotRegistered, OutcomeBlacklisted, OutcomeChangeBody:
		return true
	}
	return false
}

// Text is the user-facing sentence for the outcome.
func (r *Result) Text() string {
	names := strings.Join(r.Recipients, ", ")
	switch r.Outcome {
	case OutcomeScheduled:
		return textScheduled
	case OutcomeDraft:
		return textDraft
	case OutcomeNotRegistered:
		return names + textNotRegistered
	case OutcomeBlacklisted:
		return names + textBlacklisted
	case OutcomeChangeBody:
		return textChangeBody
	case OutcomeForbiddenWords:
		return textForbiddenWords + names + "! The message has been scheduled removing them."
	}
	return ""
}

// Composer runs the draft and delivery pipeline for one compose submission.
type Composer struct {
	users    UserDirectory
	messages MessageWriter
	logger   *slog.Logger
}

func NewComposer(users UserDirectory, messages MessageWriter, logger *slog.Logger) *Composer {
	return &Composer{users: users, messages: messages, logger: logger.With("component", "composer")}
}

// Submit saves msg as a draft or validates and delivers it.
// original is the stored message being edited, or nil for a new composition.
// Client errors abort immediately; records already created are left in place.
func (c *Composer) Submit(ctx context.Context, msg domain.Message, original *domain.Message, intent Intent) (*Result, error) {
	if intent == IntentDraft {
		return c.saveDraft(ctx, msg, original)
	}
	return c.deliver(ctx, msg, original)
}

func (c *Composer) saveDraft(ctx context.Context, msg domain.Message, original *domain.Message) (*Result, error) {
	msg.Draft = true
	msg.Scheduled = false

	var (
		saved *domain.Message
		err   error
	)
	if original != nil && !original.IsNew() {
		msg.ID = original.ID
		saved, err = c.messages.UpdateMessage(ctx, msg)
	} else {
		msg.ID = domain.NewMessageID
		saved, err = c.messages.CreateMessage(ctx, msg)
	}
	if err != nil {
		return nil, fmt.Errorf("saving draft: %w", err)
	}
	c.logger.InfoContext(ctx, "Draft saved", "message_id", saved.ID, "sender", msg.Sender)
	return &Result{Outcome: OutcomeDraft, Saved: saved}, nil
}

func (c *Composer) deliver(ctx context.Context, msg domain.Message, original *domain.Message) (*Result, error) {
	recipients := msg.Recipients()
	if len(recipients) == 0 {
		return nil, fmt.Errorf("composing message: no recipients in %q", msg.Receiver)
	}

	// 1. every recipient must be registered
	all, err := c.users.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking recipients: %w", err)
	}
	registered := make(map[string]domain.User, len(all))
	for _, u := range all {
		registered[strings.ToLower(u.Email)] = u
	}
	var unknown []string
	for _, r := range recipients {
		if _, ok := registered[strings.ToLower(r)]; !ok {
			unknown = append(unknown, r)
		}
	}
	if len(unknown) > 0 {
		c.logger.InfoContext(ctx, "Message rejected: unregistered recipients", "sender", msg.Sender, "count", len(unknown))
		return &Result{Outcome: OutcomeNotRegistered, Recipients: unknown}, nil
	}

	// 2. the sender must not be on any recipient's blacklist
	var blockedBy []string
	for _, r := range recipients {
		blacklist, err := c.users.GetBlacklist(ctx, registered[strings.ToLower(r)].ID)
		if err != nil {
			return nil, fmt.Errorf("fetching blacklist of %s: %w", r, err)
		}
		if containsFold(blacklist, msg.Sender) {
			blockedBy = append(blockedBy, r)
		}
	}
	if len(blockedBy) > 0 {
		c.logger.InfoContext(ctx, "Message rejected: sender blacklisted", "sender", msg.Sender, "count", len(blockedBy))
		return &Result{Outcome: OutcomeBlacklisted, Recipients: blockedBy}, nil
	}

	// 3. drop recipients who refuse a word of the body
	words := Tokenize(msg.Body)
	var survivors, excluded []string
	for _, r := range recipients {
		badwords, err := c.users.GetBadwords(ctx, registered[strings.ToLower(r)].ID)
		if err != nil {
			return nil, fmt.Errorf("fetching badwords of %s: %w", r, err)
		}
		if ContainsBadword(words, badwords) {
			excluded = append(excluded, r)
		} else {
			survivors = append(survivors, r)
		}
	}
	if len(survivors) == 0 {
		return &Result{Outcome: OutcomeChangeBody, Recipients: excluded}, nil
	}

	// 4. convert the edited draft, then fan out one record per survivor
	if original != nil && original.Draft && !original.IsNew() {
		converted := *original
		converted.Draft = false
		converted.Scheduled = true
		if _, err := c.messages.UpdateMessage(ctx, converted); err != nil {
			return nil, fmt.Errorf("converting draft %d: %w", original.ID, err)
		}
	}

	delivered := make([]domain.Message, 0, len(survivors))
	for _, r := range survivors {
		to := registered[strings.ToLower(r)]
		out := msg
		out.ID = domain.NewMessageID
		out.Receiver = to.Email
		out.ReceiverID = to.ID
		out.Draft = false
		out.Scheduled = true
		stored, err := c.messages.CreateMessage(ctx, out)
		if err != nil {
			return nil, fmt.Errorf("delivering to %s: %w", r, err)
		}
		delivered = append(delivered, *stored)
	}

	res := &Result{Outcome: OutcomeScheduled, Delivered: delivered}
	if len(excluded) > 0 {
		res.Outcome = OutcomeForbiddenWords
		res.Recipients = excluded
	}
	c.logger.InfoContext(ctx, "Message delivered", "sender", msg.Sender, "delivered", len(delivered), "excluded", len(excluded))
	return res, nil
}

// Tokenize splits body on every character that is not a letter, digit or underscore.
func Tokenize(body string) []string {
	return strings.FieldsFunc(body, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
}

// ContainsBadword reports whether any token equals one of badwords exactly.
func ContainsBadword(tokens, badwords []string) bool {
	if len(badwords) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	for _, w := range badwords {
		if _, ok := set[strings.TrimSpace(w)]; ok {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), s) {
			return true
		}
	}
	return false
}
