package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
)

// backend fakes the user, message and lottery microservices in memory.
type backend struct {
	mu        sync.Mutex
	users     map[int64]*domain.User
	passwords map[string]string
	blocked   map[string]bool
	badwords  map[int64][]string
	blacklist map[int64][]string
	messages  map[int64]*domain.Message
	nextUser  int64
	nextMsg   int64
	played    map[int64]int
	reported  []string

	userServer    *httptest.Server
	messageServer *httptest.Server
	lotteryServer *httptest.Server
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		users:     map[int64]*domain.User{},
		passwords: map[string]string{},
		blocked:   map[string]bool{},
		badwords:  map[int64][]string{},
		blacklist: map[int64][]string{},
		messages:  map[int64]*domain.Message{},
		played:    map[int64]int{},
		nextUser:  1,
		nextMsg:   100,
	}
	b.userServer = httptest.NewServer(b.userMux())
	b.messageServer = httptest.NewServer(b.messageMux())
	b.lotteryServer = httptest.NewServer(b.lotteryMux())
	t.Cleanup(func() {
		b.userServer.Close()
		b.messageServer.Close()
		b.lotteryServer.Close()
	})
	return b
}

func (b *backend) addUser(email, password, first, last string) *domain.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := &domain.User{ID: b.nextUser, Email: email, Firstname: first, Lastname: last, Birthdate: "1990-05-01", IsActive: true}
	b.nextUser++
	b.users[u.ID] = u
	b.passwords[email] = password
	return u
}

func (b *backend) addMessage(m domain.Message) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	m.ID = b.nextMsg
	b.nextMsg++
	b.messages[m.ID] = &m
	return m.ID
}

func (b *backend) message(id int64) domain.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.messages[id]
}

func (b *backend) allMessages() []domain.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Message, 0, len(b.messages))
	for id := int64(100); id < b.nextMsg; id++ {
		if m, ok := b.messages[id]; ok {
			out = append(out, *m)
		}
	}
	return out
}

func (b *backend) userByEmail(email string) *domain.User {
	for _, u := range b.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"body": body})
}

func pathID(r *http.Request, key string) int64 {
	id, _ := strconv.ParseInt(r.PathValue(key), 10, 64)
	return id
}

func (b *backend) userMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /user", func(w http.ResponseWriter, r *http.Request) {
		var nu domain.NewUser
		_ = json.NewDecoder(r.Body).Decode(&nu)
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.userByEmail(nu.Email) != nil {
			writeBody(w, http.StatusOK, "already registered")
			return
		}
		u := &domain.User{ID: b.nextUser, Email: nu.Email, Firstname: nu.Firstname, Lastname: nu.Lastname, Birthdate: nu.Birthdate, Photo: nu.Photo, Badwords: nu.Badwords}
		b.nextUser++
		b.users[u.ID] = u
		b.passwords[u.Email] = nu.Password
		writeBody(w, http.StatusCreated, u)
	})
	mux.HandleFunc("GET /user/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		u, ok := b.users[pathID(r, "id")]
		if !ok {
			writeBody(w, http.StatusNotFound, "not found")
			return
		}
		writeBody(w, http.StatusOK, u)
	})
	mux.HandleFunc("PUT /user/{id}", func(w http.ResponseWriter, r *http.Request) {
		var upd domain.UserUpdate
		_ = json.NewDecoder(r.Body).Decode(&upd)
		b.mu.Lock()
		defer b.mu.Unlock()
		u, ok := b.users[pathID(r, "id")]
		if !ok {
			writeBody(w, http.StatusNotFound, "not found")
			return
		}
		u.Firstname, u.Lastname, u.Birthdate, u.Photo = upd.Firstname, upd.Lastname, upd.Birthdate, upd.Photo
		u.Badwords, u.Blacklist = upd.Badwords, upd.Blacklist
		b.badwords[u.ID] = domain.SplitList(upd.Badwords)
		b.blacklist[u.ID] = domain.SplitList(upd.Blacklist)
		writeBody(w, http.StatusOK, u)
	})
	mux.HandleFunc("DELETE /user/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.users, pathID(r, "id"))
		writeBody(w, http.StatusAccepted, "deleted")
	})
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []domain.User{}
		for id := int64(1); id < b.nextUser; id++ {
			if u, ok := b.users[id]; ok {
				out = append(out, *u)
			}
		}
		writeBody(w, http.StatusOK, out)
	})
	mux.HandleFunc("POST /search_users/{input}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []domain.User{}
		for _, u := range b.users {
			if strings.Contains(u.Email, r.PathValue("input")) || strings.Contains(u.Firstname, r.PathValue("input")) {
				out = append(out, *u)
			}
		}
		writeBody(w, http.StatusOK, out)
	})
	mux.HandleFunc("GET /badwords/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		words := b.badwords[pathID(r, "id")]
		if words == nil {
			words = []string{}
		}
		writeBody(w, http.StatusOK, words)
	})
	mux.HandleFunc("GET /blacklist/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []domain.User{}
		for _, email := range b.blacklist[pathID(r, "id")] {
			out = append(out, domain.User{Email: email})
		}
		writeBody(w, http.StatusOK, out)
	})
	mux.HandleFunc("POST /authenticate", func(w http.ResponseWriter, r *http.Request) {
		var c struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&c)
		b.mu.Lock()
		defer b.mu.Unlock()
		u := b.userByEmail(c.Email)
		switch {
		case u == nil || b.passwords[c.Email] != c.Password:
			writeBody(w, http.StatusUnauthorized, "invalid")
		case b.blocked[c.Email]:
			writeBody(w, http.StatusForbidden, "blocked")
		default:
			writeBody(w, http.StatusOK, u)
		}
	})
	mux.HandleFunc("POST /report/{email}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		u := b.userByEmail(r.PathValue("email"))
		if u == nil {
			writeBody(w, http.StatusNotFound, "not found")
			return
		}
		u.IsReported = true
		b.reported = append(b.reported, u.Email)
		writeBody(w, http.StatusOK, u)
	})
	return mux
}

func (b *backend) messageMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /message/{key}", func(w http.ResponseWriter, r *http.Request) {
		var m domain.Message
		_ = json.NewDecoder(r.Body).Decode(&m)
		b.mu.Lock()
		defer b.mu.Unlock()
		m.ID = b.nextMsg
		b.nextMsg++
		b.messages[m.ID] = &m
		writeBody(w, http.StatusCreated, m)
	})
	mux.HandleFunc("PUT /message/{key}", func(w http.ResponseWriter, r *http.Request) {
		var m domain.Message
		_ = json.NewDecoder(r.Body).Decode(&m)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.messages[m.ID] = &m
		writeBody(w, http.StatusOK, m)
	})
	mux.HandleFunc("GET /message/{key}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		m, ok := b.messages[pathID(r, "key")]
		if !ok {
			writeBody(w, http.StatusNotFound, "not found")
			return
		}
		writeBody(w, http.StatusOK, m)
	})
	mux.HandleFunc("DELETE /message/{key}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.messages, pathID(r, "key"))
		writeBody(w, http.StatusAccepted, "deleted")
	})
	mux.HandleFunc("GET /notifications/{email}", func(w http.ResponseWriter, r *http.Request) {
		email := r.PathValue("email")
		n := domain.Notifications{Inbox: []domain.Message{}, Sent: []domain.Message{}}
		for _, m := range b.allMessages() {
			if b.inFolder(m, domain.FolderInbox, email) && !m.Read {
				n.Inbox = append(n.Inbox, m)
			}
			if b.inFolder(m, domain.FolderSent, email) && m.Read && m.Sent == domain.SentDone {
				n.Sent = append(n.Sent, m)
			}
		}
		writeBody(w, http.StatusOK, n)
	})
	mux.HandleFunc("POST /search/{email}", func(w http.ResponseWriter, r *http.Request) {
		var f domain.SearchFilter
		_ = json.NewDecoder(r.Body).Decode(&f)
		email := r.PathValue("email")
		res := domain.SearchResult{Inbox: []domain.Message{}, Sent: []domain.Message{}, Scheduled: []domain.Message{}}
		for _, m := range b.allMessages() {
			if !strings.Contains(m.Body, f.Body) {
				continue
			}
			switch {
			case b.inFolder(m, domain.FolderInbox, email):
				res.Inbox = append(res.Inbox, m)
			case b.inFolder(m, domain.FolderSent, email):
				res.Sent = append(res.Sent, m)
			case b.inFolder(m, domain.FolderScheduled, email):
				res.Scheduled = append(res.Scheduled, m)
			}
		}
		writeBody(w, http.StatusOK, res)
	})
	mux.HandleFunc("GET /{folder}/{email}", func(w http.ResponseWriter, r *http.Request) {
		folder, ok := domain.ParseFolder(r.PathValue("folder"))
		if !ok {
			writeBody(w, http.StatusNotFound, "no such folder")
			return
		}
		out := []domain.Message{}
		for _, m := range b.allMessages() {
			if b.inFolder(m, folder, r.PathValue("email")) {
				out = append(out, m)
			}
		}
		writeBody(w, http.StatusOK, out)
	})
	return mux
}

// inFolder mirrors how the message service files messages. Delivered
// messages have sent >= 1; scheduled ones are still waiting.
func (b *backend) inFolder(m domain.Message, folder domain.Folder, email string) bool {
	switch folder {
	case domain.FolderInbox:
		return m.Receiver == email && !m.Draft && m.Sent >= domain.SentDone
	case domain.FolderSent:
		return m.Sender == email && !m.Draft && m.Sent >= domain.SentDone
	case domain.FolderScheduled:
		return m.Sender == email && !m.Draft && m.Sent == domain.SentPending
	case domain.FolderDraft:
		return m.Sender == email && m.Draft
	}
	return false
}

func (b *backend) lotteryMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /lottery", func(w http.ResponseWriter, r *http.Request) {
		var p struct {
			ID     int64 `json:"id"`
			Number int   `json:"lottery_number"`
		}
		_ = json.NewDecoder(r.Body).Decode(&p)
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, n := range b.played {
			if n == p.Number {
				writeBody(w, http.StatusOK, "number taken")
				return
			}
		}
		b.played[p.ID] = p.Number
		writeBody(w, http.StatusCreated, p)
	})
	mux.HandleFunc("GET /lottery/exist/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.played[pathID(r, "id")]; ok {
			writeBody(w, http.StatusOK, true)
			return
		}
		writeBody(w, http.StatusNotFound, false)
	})
	return mux
}
