package forms

import (
	"fmt"
	"time"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
)

// Age bounds enforced on birthdates.
const (
	MinAge = 18
	MaxAge = 110
)

// Lottery numbers accepted by the draw.
const (
	LotteryMin = 1
	LotteryMax = 100
)

// Compose intents.
const (
	ChoiceDraft    = "Draft"
	ChoiceSchedule = "Schedule"
)

// Photo confirm flag values on the compose form.
const (
	PhotoRemove  = "0"
	PhotoReplace = "1"
)

const dateErrorMessage = "Date format DD/MM/YYYY."

var ageErrorMessage = fmt.Sprintf("You must be between %d and %d years old.", MinAge, MaxAge)

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func (LoginForm) Messages() map[string]string {
	return map[string]string{
		"email.required":    "Email is required.",
		"email.email":       "Invalid email.",
		"password.required": "Password is required.",
	}
}

// UserForm is the registration form.
type UserForm struct {
	Email     string `form:"email" validate:"required,email"`
	Firstname string `form:"firstname" validate:"required"`
	Lastname  string `form:"lastname" validate:"required"`
	Password  string `form:"password" validate:"required,min=5"`
	Birthdate string `form:"birthdate" validate:"required,datefmt,age=18:110"`
	Badwords  string `form:"badwords"`
	Photo     []byte `form:"photo" validate:"omitempty,image"`
}

func (UserForm) Messages() map[string]string {
	return map[string]string{
		"email.required":     "Email is required.",
		"email.email":        "Invalid email.",
		"firstname":          "Firstname is required.",
		"lastname":           "Lastname is required.",
		"password.required":  "Password is required.",
		"password.min":       "Password must be at least 5 characters long.",
		"birthdate.required": dateErrorMessage,
		"birthdate.datefmt":  dateErrorMessage,
		"birthdate.age":      ageErrorMessage,
		"photo":              "The photo must be a JPEG, PNG, GIF, BMP, WebP or TIFF image.",
	}
}

// BirthdateISO converts the DD/MM/YYYY input to the user service format.
func (f UserForm) BirthdateISO() string {
	return isoDate(f.Birthdate)
}

// ProfileForm edits an existing account. An empty password keeps the current one.
type ProfileForm struct {
	Firstname string `form:"firstname" validate:"required"`
	Lastname  string `form:"lastname" validate:"required"`
	Password  string `form:"password" validate:"omitempty,min=5"`
	Birthdate string `form:"birthdate" validate:"required,datefmt,age=18:110"`
	Badwords  string `form:"badwords"`
	Blacklist string `form:"blacklist" validate:"omitempty,emaillist"`
	Photo     []byte `form:"photo" validate:"omitempty,image"`
}

func (ProfileForm) Messages() map[string]string {
	return map[string]string{
		"firstname":          "Firstname is required.",
		"lastname":           "Lastname is required.",
		"password.min":       "Password must be at least 5 characters long.",
		"birthdate.required": dateErrorMessage,
		"birthdate.datefmt":  dateErrorMessage,
		"birthdate.age":      ageErrorMessage,
		"blacklist":          "The blacklist must be a comma separated list of emails.",
		"photo":              "The photo must be a JPEG, PNG, GIF, BMP, WebP or TIFF image.",
	}
}

func (f ProfileForm) BirthdateISO() string {
	return isoDate(f.Birthdate)
}

// ProfileFormFromUser pre-fills the profile page.
func ProfileFormFromUser(u *domain.User) ProfileForm {
	birth := u.Birthdate
	if t, err := time.Parse(domain.BirthdateLayout, u.Birthdate); err == nil {
		birth = t.Format(DateLayout)
	}
	return ProfileForm{
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Birthdate: birth,
		Badwords:  u.Badwords,
		Blacklist: u.Blacklist,
	}
}

type ReportForm struct {
	Email  string `form:"email" validate:"required,email"`
	Reason string `form:"reason" validate:"max=500"`
}

func (ReportForm) Messages() map[string]string {
	return map[string]string{
		"email.required": "Email is required.",
		"email.email":    "Invalid email.",
		"reason":         "The reason can be at most 500 characters long.",
	}
}

type LotteryForm struct {
	Number int `form:"number" validate:"required,min=1,max=100"`
}

func (LotteryForm) Messages() map[string]string {
	return map[string]string{
		"number": "Number not allowed! Please choose another number between 1 and 100",
	}
}

// MessageForm is the compose form shared by new messages, drafts, replies and forwards.
type MessageForm struct {
	Receiver  string `form:"receiver" validate:"required,recipients"`
	Body      string `form:"body" validate:"required"`
	Date      string `form:"date" validate:"required,datefmt"`
	Time      string `form:"time" validate:"required,timefmt"`
	Choice    string `form:"choice" validate:"oneof=Draft Schedule"`
	Bold      bool   `form:"bold"`
	Italic    bool   `form:"italic"`
	Underline bool   `form:"underline"`
	Confirm   string `form:"confirm" validate:"omitempty,oneof=0 1"`
	Photo     []byte `form:"photo" validate:"omitempty,image"`
}

// MessageDateError is shown for any bad or past date/time.
const MessageDateError = "Date format DD/MM/YYYY hh:mm"

func (MessageForm) Messages() map[string]string {
	return map[string]string{
		"receiver": "At least one recipient is required.",
		"body":     "The message body is required.",
		"date":     MessageDateError,
		"time":     MessageDateError,
		"choice":   "Choose Draft or Schedule.",
		"confirm":  "Invalid photo action.",
		"photo":    "The photo must be a JPEG, PNG, GIF, BMP, WebP or TIFF image.",
	}
}

// ScheduledAt combines Date and Time in the local zone.
func (f MessageForm) ScheduledAt() (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, f.Date+" "+f.Time, time.Local)
}

// Timestamp renders the message timestamp (DD/MM/YYYY HH:MM).
func (f MessageForm) Timestamp() string {
	return f.Date + " " + f.Time
}

// MessageFormFromMessage pre-fills the compose form from a stored message.
func MessageFormFromMessage(m *domain.Message) MessageForm {
	f := MessageForm{
		Receiver:  m.Receiver,
		Body:      m.Body,
		Choice:    ChoiceSchedule,
		Bold:      m.Bold,
		Italic:    m.Italic,
		Underline: m.Underline,
	}
	if t, err := m.Time(); err == nil {
		f.Date = t.Format(DateLayout)
		f.Time = t.Format(TimeLayout)
	}
	return f
}

// ToMessage builds the message a submission describes. original is the stored
// draft being edited, or nil; its id and photo carry over unless the confirm
// flag removes or replaces the photo.
func (f MessageForm) ToMessage(sender *domain.User, original *domain.Message) domain.Message {
	m := domain.Message{
		ID:        domain.NewMessageID,
		SenderID:  sender.ID,
		Sender:    sender.Email,
		Receiver:  f.Receiver,
		Body:      f.Body,
		Timestamp: f.Timestamp(),
		Draft:     f.Choice == ChoiceDraft,
		Scheduled: f.Choice != ChoiceDraft,
		Bold:      f.Bold,
		Italic:    f.Italic,
		Underline: f.Underline,
	}
	if original != nil {
		m.ID = original.ID
		m.Photo = original.Photo
	}
	switch {
	case f.Confirm == PhotoRemove:
		m.Photo = ""
	case f.Confirm == PhotoReplace, f.Confirm == "" && len(f.Photo) > 0:
		if len(f.Photo) > 0 {
			m.Photo = EncodePhoto(f.Photo)
		}
	}
	return m
}

func isoDate(ddmmyyyy string) string {
	t, err := time.Parse(DateLayout, ddmmyyyy)
	if err != nil {
		return ""
	}
	return t.Format(domain.BirthdateLayout)
}
