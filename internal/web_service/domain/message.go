package domain

import (
	"strings"
	"time"
)

// NewMessageID marks a message the message service has not stored yet.
const NewMessageID int64 = -1

// TimestampLayout is the wire format of Message.Timestamp (DD/MM/YYYY HH:MM).
const TimestampLayout = "02/01/2006 15:04"

// Delivery states carried in Message.Sent.
const (
	SentPending  = 0
	SentDone     = 1
	SentNotified = 2
)

// Message mirrors the message service's representation.
// Receiver holds a single address once stored; at composition time it may
// hold a comma separated list.
type Message struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"sender_id"`
	Sender     string `json:"sender"`
	ReceiverID int64  `json:"receiver_id"`
	Receiver   string `json:"receiver"`
	Body       string `json:"body"`
	Photo      string `json:"photo"`
	Timestamp  string `json:"timestamp"`
	Draft      bool   `json:"draft"`
	Scheduled  bool   `json:"scheduled"`
	Sent       int    `json:"sent"`
	Read       bool   `json:"read"`
	Deleted    bool   `json:"deleted"`
	Bold       bool   `json:"bold"`
	Italic     bool   `json:"italic"`
	Underline  bool   `json:"underline"`
}

func (m *Message) IsNew() bool {
	return m.ID == NewMessageID
}

// Recipients splits the receiver field into trimmed, non-empty addresses,
// keeping the first occurrence of duplicates. Addresses compare case-insensitively.
func (m *Message) Recipients() []string {
	parts := strings.Split(m.Receiver, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Time parses Timestamp in the local zone.
func (m *Message) Time() (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, m.Timestamp, time.Local)
}

// SearchResult is the message service's answer to a filtered mailbox query.
type SearchResult struct {
	Inbox     []Message `json:"filtered_inbox"`
	Sent      []Message `json:"filtered_sent"`
	Scheduled []Message `json:"filtered_scheduled"`
}

// SearchFilter narrows a mailbox listing. Empty fields match everything.
type SearchFilter struct {
	Body   string `json:"body"`
	Sender string `json:"sender"`
	Date   string `json:"date"`
}

func (f SearchFilter) IsZero() bool {
	return f.Body == "" && f.Sender == "" && f.Date == ""
}

// Notifications lists messages the user has not been told about yet.
type Notifications struct {
	Inbox []Message `json:"inbox"`
	Sent  []Message `json:"sent"`
}

// Folder names a mailbox view backed by the message service.
type Folder string

const (
	FolderInbox     Folder = "inbox"
	FolderSent      Folder = "sent"
	FolderDraft     Folder = "draft"
	FolderScheduled Folder = "scheduled"
)

var Folders = []Folder{FolderInbox, FolderSent, FolderDraft, FolderScheduled}

// ParseFolder returns the folder and whether name is one of Folders.
func ParseFolder(name string) (Folder, bool) {
	for _, f := range Folders {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}
