package http

import (
	"github.com/messageinabottle/golang_services/internal/web_service/app"
	"github.com/messageinabottle/golang_services/internal/web_service/domain"
	"github.com/messageinabottle/golang_services/internal/web_service/forms"
)

// Texts shown on the auth and account pages.
const (
	textWrongCredentials = "Incorrect username or password."
	textUserBlocked      = "You are blocked, you can't login anymore."
	textEmailTaken       = "Email already registered."
	textJustRegistered   = "You are registered! Please"
	textProfileUpdated   = "Profile updated."
	textUserReported     = "User reported."
	textUserNotFound     = "User not found."
	textNumberNotAllowed = "Number not allowed."
	suggestBadwords      = "README: separate each forbidden word with a ','"
	suggestRecipients    = "README: separate each recipient with a ','"
)

type loginView struct {
	Form             forms.LoginForm
	Errors           forms.ValidationErrors
	WrongCredentials string
	UserBlocked      string
}

type registerView struct {
	Form           forms.UserForm
	Errors         forms.ValidationErrors
	Photo          string
	Suggest        string
	EmailError     string
	JustRegistered string
}

type profileView struct {
	Form   forms.ProfileForm
	Errors forms.ValidationErrors
	Photo  string
	Notice string
}

type usersView struct {
	Users  []domain.User
	Search string
}

type reportView struct {
	Email   string
	Form    forms.ReportForm
	Errors  forms.ValidationErrors
	Notice  string
	Problem string
}

type homeView struct {
	Notifications app.NotificationCount
}

type folderCount struct {
	Name  domain.Folder
	Count int
}

type overviewView struct {
	Folders []folderCount
}

type messagePageView struct {
	Message   *app.MessageView
	Folder    domain.Folder
	CanDelete bool
}

// composeView backs the compose page for new messages, replies, forwards and drafts.
type composeView struct {
	Title     string
	Action    string
	Form      forms.MessageForm
	Errors    forms.ValidationErrors
	Photo     string
	Suggest   string
	DraftID   int64
	Disabled  bool
	DateError string
	Scheduled string
	Draft     string
	Forbidden string
	Problem   string
}

// apply copies a pipeline result onto the page.
func (v *composeView) apply(res *app.Result) {
	switch res.Outcome {
	case app.OutcomeScheduled:
		v.Scheduled = res.Text()
		v.Disabled = true
	case app.OutcomeDraft:
		v.Draft = res.Text()
		v.Disabled = true
	case app.OutcomeForbiddenWords:
		v.Forbidden = res.Text()
		v.Disabled = true
	default:
		v.Problem = res.Text()
	}
}

type lotteryView struct {
	Played bool
	Number int
	Error  string
}
