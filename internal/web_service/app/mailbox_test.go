package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
)

const owner = "me@mib.com"

func inboxMessages(n int) []domain.Message {
	msgs := make([]domain.Message, n)
	for i := range msgs {
		msgs[i] = domain.Message{
			ID:        int64(i + 1),
			Sender:    fmt.Sprintf("friend%d@mib.com", i),
			Receiver:  owner,
			Body:      fmt.Sprintf("message %d", i),
			Timestamp: "01/01/2031 10:00",
			Scheduled: true,
			Sent:      domain.SentDone,
		}
	}
	return msgs
}

func TestMailbox_ListPaginatesAndHidesDeleted(t *testing.T) {
	store := new(MockMessageStore)
	mb := NewMailbox(store, 2, discardLogger())

	msgs := inboxMessages(5)
	msgs[1].Deleted = true
	store.On("GetFolder", mock.Anything, domain.FolderInbox, owner).Return(msgs, nil)

	page, err := mb.List(context.Background(), owner, domain.FolderInbox, domain.SearchFilter{}, 2)
	require.NoError(t, err)

	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, int64(4), page.Messages[0].ID)
	assert.Equal(t, "friend3@mib.com", page.Messages[0].Counterpart)
	assert.True(t, page.HasPrev())
	assert.False(t, page.HasNext())

	page, err = mb.List(context.Background(), owner, domain.FolderInbox, domain.SearchFilter{}, 99)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page, "page is clamped to the last one")

	page, err = mb.List(context.Background(), owner, domain.FolderInbox, domain.SearchFilter{}, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
}

func TestMailbox_ListEmptyFolder(t *testing.T) {
	store := new(MockMessageStore)
	mb := NewMailbox(store, 10, discardLogger())
	store.On("GetFolder", mock.Anything, domain.FolderScheduled, owner).Return([]domain.Message{}, nil)

	page, err := mb.List(context.Background(), owner, domain.FolderScheduled, domain.SearchFilter{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pages)
	assert.Empty(t, page.Messages)
}

func TestMailbox_SentListingConsumesReadReceiptsOnce(t *testing.T) {
	store := new(MockMessageStore)
	mb := NewMailbox(store, 10, discardLogger())

	sent := []domain.Message{
		{ID: 1, Sender: owner, Receiver: "a@mib.com", Read: true, Sent: domain.SentDone, Scheduled: true},
		{ID: 2, Sender: owner, Receiver: "b@mib.com", Read: false, Sent: domain.SentDone, Scheduled: true},
		{ID: 3, Sender: owner, Receiver: "c@mib.com", Read: true, Sent: domain.SentNotified, Scheduled: true},
	}
	store.On("GetFolder", mock.Anything, domain.FolderSent, owner).Return(sent, nil)
	store.On("UpdateMessage", mock.Anything, mock.MatchedBy(func(m domain.Message) bool {
		return m.ID == 1 && m.Sent == domain.SentNotified && m.Read
	})).Return(echoUpdate, nil).Once()

	page, err := mb.List(context.Background(), owner, domain.FolderSent, domain.SearchFilter{}, 1)
	require.NoError(t, err)

	require.Len(t, page.Messages, 3)
	assert.True(t, page.Messages[0].ReadNotice)
	assert.Equal(t, domain.SentNotified, page.Messages[0].Sent)
	assert.False(t, page.Messages[1].ReadNotice)
	assert.False(t, page.Messages[2].ReadNotice)
	assert.Equal(t, "a@mib.com", page.Messages[0].Counterpart)
	store.AssertNumberOfCalls(t, "UpdateMessage", 1)
}

func TestMailbox_ListWithFilterUsesSearch(t *testing.T) {
	store := new(MockMessageStore)
	mb := NewMailbox(store, 10, discardLogger())
	filter := domain.SearchFilter{Body: "pizza"}

	store.On("Search", mock.Anything, owner, filter).Return(&domain.SearchResult{
		Inbox:     []domain.Message{{ID: 1, Receiver: owner}},
		Scheduled: []domain.Message{{ID: 2, Sender: owner}, {ID: 3, Sender: owner}},
	}, nil)

	page, err := mb.List(context.Background(), owner, domain.FolderScheduled, filter, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, filter, page.Filter)
	store.AssertNotCalled(t, "GetFolder", mock.Anything, mock.Anything, mock.Anything)
}

func TestMailbox_DraftFilterIsLocal(t *testing.T) {
	store := new(MockMessageStore)
	mb := NewMailbox(store, 10, discardLogger())

	drafts := []domain.Message{
		{ID: 1, Sender: owner, Receiver: "anna@mib.com", Body: "Pizza tonight?", Timestamp: "02/03/2031 20:00", Draft: true},
		{ID: 2, Sender: owner, Receiver: "bob@mib.com", Body: "pizza again", Timestamp: "05/03/2031 20:00", Draft: true},
		{ID: 3, Sender: owner, Receiver: "anna@mib.com", Body: "hello", Timestamp: "02/03/2031 09:00", Draft: true},
	}
	store.On("GetFolder", mock.Anything, domain.FolderDraft, owner).Return(drafts, nil)

	page, err := mb.List(context.Background(), owner, domain.FolderDraft, domain.SearchFilter{Body: "PIZZA", Sender: "anna", Date: "02/03/2031"}, 1)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, int64(1), page.Messages[0].ID)
	store.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestMailbox_OpenMarksInboxMessageRead(t *testing.T) {
	store := new(MockMessageStore)
	mb := NewMailbox(store, 10, discardLogger())

	store.On("GetMessageByID", mock.Anything, int64(8)).Return(&domain.Message{ID: 8, Sender: "x@mib.com", Receiver: owner, Scheduled: true}, nil)
	store.On("UpdateMessage", mock.Anything, mock.MatchedBy(func(m domain.Message) bool { return m.ID == 8 && m.Read })).
		Return(echoUpdate, nil).Once()

	v, err := mb.Open(context.Background(), owner, domain.FolderInbox, 8)
	require.NoError(t, err)
	assert.True(t, v.Read)
	assert.Equal(t, "x@mib.com", v.Counterpart)
	store.AssertExpectations(t)
}

func TestMailbox_OpenChecksOwnership(t *testing.T) {
	store := new(MockMessageStore)
	mb := NewMailbox(store, 10, discardLogger())

	store.On("GetMessageByID", mock.Anything, int64(8)).Return(&domain.Message{ID: 8, Sender: "x@mib.com", Receiver: "other@mib.com"}, nil)
	store.On("GetMessageByID", mock.Anything, int64(9)).Return(&domain.Message{ID: 9, Sender: owner, Receiver: "x@mib.com", Scheduled: true}, nil)
	store.On("GetMessageByID", mock.Anything, int64(10)).Return(nil, domain.ErrNotFound)

	_, err := mb.Open(context.Background(), owner, domain.FolderInbox, 8)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = mb.Open(context.Background(), owner, domain.FolderDraft, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound, "a scheduled message is not a draft")

	v, err := mb.Open(context.Background(), owner, domain.FolderSent, 9)
	require.NoError(t, err)
	assert.Equal(t, "x@mib.com", v.Counterpart)

	_, err = mb.Open(context.Background(), owner, domain.FolderSent, 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.AssertNotCalled(t, "UpdateMessage", mock.Anything, mock.Anything)
}

func TestMailbox_Delete(t *testing.T) {
	t.Run("inbox is a soft delete", func(t *testing.T) {
		store := new(MockMessageStore)
		mb := NewMailbox(store, 10, discardLogger())
		store.On("GetMessageByID", mock.Anything, int64(4)).Return(&domain.Message{ID: 4, Receiver: owner, Read: true}, nil)
		store.On("UpdateMessage", mock.Anything, mock.MatchedBy(func(m domain.Message) bool { return m.ID == 4 && m.Deleted })).
			Return(echoUpdate, nil).Once()

		require.NoError(t, mb.Delete(context.Background(), owner, domain.FolderInbox, 4))
		store.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("draft is removed", func(t *testing.T) {
		store := new(MockMessageStore)
		mb := NewMailbox(store, 10, discardLogger())
		store.On("GetMessageByID", mock.Anything, int64(5)).Return(&domain.Message{ID: 5, Sender: owner, Draft: true}, nil)
		store.On("DeleteMessage", mock.Anything, int64(5)).Return(nil).Once()

		require.NoError(t, mb.Delete(context.Background(), owner, domain.FolderDraft, 5))
		store.AssertExpectations(t)
	})

	t.Run("sent cannot be deleted", func(t *testing.T) {
		store := new(MockMessageStore)
		mb := NewMailbox(store, 10, discardLogger())

		err := mb.Delete(context.Background(), owner, domain.FolderSent, 5)
		assert.ErrorIs(t, err, domain.ErrOperationNotAllowed)
		store.AssertNotCalled(t, "GetMessageByID", mock.Anything, mock.Anything)
	})
}

func TestMailbox_NotificationsAndOverview(t *testing.T) {
	store := new(MockMessageStore)
	mb := NewMailbox(store, 10, discardLogger())

	store.On("GetNotifications", mock.Anything, owner).Return(&domain.Notifications{
		Inbox: inboxMessages(3),
		Sent:  inboxMessages(1),
	}, nil)
	inbox := inboxMessages(3)
	inbox[0].Deleted = true
	store.On("GetFolder", mock.Anything, domain.FolderInbox, owner).Return(inbox, nil)
	store.On("GetFolder", mock.Anything, domain.FolderSent, owner).Return(inboxMessages(2), nil)
	store.On("GetFolder", mock.Anything, domain.FolderDraft, owner).Return([]domain.Message{}, nil)
	store.On("GetFolder", mock.Anything, domain.FolderScheduled, owner).Return(inboxMessages(4), nil)

	n, err := mb.Notifications(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, NotificationCount{Inbox: 3, Sent: 1}, n)
	assert.Equal(t, 4, n.Total())

	ov, err := mb.Overview(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, map[domain.Folder]int{
		domain.FolderInbox:     2,
		domain.FolderSent:      2,
		domain.FolderDraft:     0,
		domain.FolderScheduled: 4,
	}, ov.Counts)
}

func TestMailbox_ServiceFailurePropagates(t *testing.T) {
	store := new(MockMessageStore)
	mb := NewMailbox(store, 10, discardLogger())
	store.On("GetFolder", mock.Anything, domain.FolderInbox, owner).Return(nil, domain.ErrServiceUnavailable)

	_, err := mb.List(context.Background(), owner, domain.FolderInbox, domain.SearchFilter{}, 1)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestNewMessageView_Photo(t *testing.T) {
	v := NewMessageView(domain.Message{Photo: "aGVsbG8=", Sent: domain.SentNotified, Receiver: "r@mib.com"}, domain.FolderScheduled)
	assert.Equal(t, "r@mib.com", v.Counterpart)
	assert.True(t, v.Delivered())
	assert.NotEmpty(t, v.PhotoURI)

	v = NewMessageView(domain.Message{}, domain.FolderSent)
	assert.Empty(t, v.PhotoURI)
	assert.False(t, v.Delivered())
}
