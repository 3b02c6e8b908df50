package forms

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrBadForm wraps body parsing failures (oversized upload, broken multipart).
var ErrBadForm = errors.New("malformed form submission")

func parse(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadForm, err)
	}
	return nil
}

func value(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}

func checked(r *http.Request, key string) bool {
	return r.PostFormValue(key) != ""
}

// file returns the uploaded bytes of key, or nil when nothing was uploaded.
func file(r *http.Request, key string) ([]byte, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, _, err := r.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadForm, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadForm, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func DecodeLogin(w http.ResponseWriter, r *http.Request) (LoginForm, error) {
	if err := parse(w, r, 0); err != nil {
		return LoginForm{}, err
	}
	return LoginForm{Email: value(r, "email"), Password: r.PostFormValue("password")}, nil
}

func DecodeUser(w http.ResponseWriter, r *http.Request, maxBytes int64) (UserForm, error) {
	if err := parse(w, r, maxBytes); err != nil {
		return UserForm{}, err
	}
	photo, err := file(r, "photo")
	if err != nil {
		return UserForm{}, err
	}
	return UserForm{
		Email:     value(r, "email"),
		Firstname: value(r, "firstname"),
		Lastname:  value(r, "lastname"),
		Password:  r.PostFormValue("password"),
		Birthdate: value(r, "birthdate"),
		Badwords:  value(r, "badwords"),
		Photo:     photo,
	}, nil
}

func DecodeProfile(w http.ResponseWriter, r *http.Request, maxBytes int64) (ProfileForm, error) {
	if err := parse(w, r, maxBytes); err != nil {
		return ProfileForm{}, err
	}
	photo, err := file(r, "photo")
	if err != nil {
		return ProfileForm{}, err
	}
	return ProfileForm{
		Firstname: value(r, "firstname"),
		Lastname:  value(r, "lastname"),
		Password:  r.PostFormValue("password"),
		Birthdate: value(r, "birthdate"),
		Badwords:  value(r, "badwords"),
		Blacklist: value(r, "blacklist"),
		Photo:     photo,
	}, nil
}

func DecodeReport(w http.ResponseWriter, r *http.Request) (ReportForm, error) {
	if err := parse(w, r, 0); err != nil {
		return ReportForm{}, err
	}
	return ReportForm{Email: value(r, "email"), Reason: value(r, "reason")}, nil
}

// DecodeLottery leaves Number at zero when the input is not an integer.
func DecodeLottery(w http.ResponseWriter, r *http.Request) (LotteryForm, error) {
	if err := parse(w, r, 0); err != nil {
		return LotteryForm{}, err
	}
	n, _ := strconv.Atoi(value(r, "number"))
	return LotteryForm{Number: n}, nil
}

// DecodeMessage reads the compose form. Missing date or time default to now.
func DecodeMessage(w http.ResponseWriter, r *http.Request, maxBytes int64, now time.Time) (MessageForm, error) {
	if err := parse(w, r, maxBytes); err != nil {
		return MessageForm{}, err
	}
	photo, err := file(r, "photo")
	if err != nil {
		return MessageForm{}, err
	}
	f := MessageForm{
		Receiver:  value(r, "receiver"),
		Body:      r.PostFormValue("body"),
		Date:      value(r, "date"),
		Time:      value(r, "time"),
		Choice:    value(r, "choice"),
		Bold:      checked(r, "bold"),
		Italic:    checked(r, "italic"),
		Underline: checked(r, "underline"),
		Confirm:   value(r, "confirm"),
		Photo:     photo,
	}
	if f.Date == "" {
		f.Date = now.Format(DateLayout)
	}
	if f.Time == "" {
		f.Time = now.Format(TimeLayout)
	}
	if f.Choice == "" {
		f.Choice = ChoiceSchedule
	}
	return f, nil
}
