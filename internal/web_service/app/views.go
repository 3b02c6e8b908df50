package app

import (
	"github.com/messageinabottle/golang_services/internal/web_service/domain"
	"github.com/messageinabottle/golang_services/internal/web_service/forms"
)

// MessageView is what templates render for one message.
type MessageView struct {
	domain.Message
	// Counterpart is the other party: the sender in the inbox, the receiver elsewhere.
	Counterpart string
	PhotoURI    string
	// ReadNotice is set on sent messages whose read receipt is shown for the first time.
	ReadNotice bool
}

func NewMessageView(m domain.Message, folder domain.Folder) MessageView {
	v := MessageView{
		Message:     m,
		Counterpart: m.Receiver,
		PhotoURI:    forms.Base64DataURI(m.Photo),
	}
	if folder == domain.FolderInbox {
		v.Counterpart = m.Sender
	}
	return v
}

// Delivered reports whether the message service has delivered the message.
func (v MessageView) Delivered() bool {
	return v.Sent >= domain.SentDone
}

func newMessageViews(msgs []domain.Message, folder domain.Folder) []MessageView {
	out := make([]MessageView, len(msgs))
	for i, m := range msgs {
		out[i] = NewMessageView(m, folder)
	}
	return out
}
