package forms

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
)

// Input layouts accepted from the browser.
const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04"
)

// FieldError is one user-facing validation failure.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors lists every failed field in declaration order.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// For returns the first message reported for field, or "".
func (e ValidationErrors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Form is implemented by every submitted form. Messages maps "field.tag"
// (or just "field") to the text shown to the user.
type Form interface {
	Messages() map[string]string
}

// Validator checks forms against their `validate` tags.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator builds a Validator. A nil clock means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(), now: now}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v.validate, "datefmt", layoutValidator(DateLayout))
	mustRegister(v.validate, "timefmt", layoutValidator(TimeLayout))
	mustRegister(v.validate, "age", v.validateAge)
	mustRegister(v.validate, "emaillist", validateEmailList)
	mustRegister(v.validate, "image", validateImage)
	mustRegister(v.validate, "recipients", validateRecipients)
	v.validate.RegisterStructValidation(v.validateSchedule, MessageForm{})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %q validator: %v", tag, err))
	}
}

// Validate returns nil or ValidationErrors. Any failure rejects the whole form.
func (v *Validator) Validate(ctx context.Context, form Form) error {
	err := v.validate.StructCtx(ctx, form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := form.Messages()
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{Field: fe.Field(), Message: lookupMessage(msgs, fe)})
	}
	return out
}

func lookupMessage(msgs map[string]string, fe validator.FieldError) string {
	if m, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := msgs[fe.Field()]; ok {
		return m
	}
	return "Invalid " + fe.Field() + "."
}

func layoutValidator(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, err := time.Parse(layout, fl.Field().String())
		return err == nil
	}
}

// validateAge expects a DD/MM/YYYY string and a "min:max" years parameter.
func (v *Validator) validateAge(fl validator.FieldLevel) bool {
	minAge, maxAge, ok := parseRange(fl.Param())
	if !ok {
		return false
	}
	born, err := time.Parse(DateLayout, fl.Field().String())
	if err != nil {
		return false
	}
	age := YearsBetween(born, v.now())
	return age >= minAge && age <= maxAge
}

func parseRange(param string) (int, int, bool) {
	lo, hi, found := strings.Cut(param, ":")
	if !found {
		return 0, 0, false
	}
	minAge, err1 := strconv.Atoi(lo)
	maxAge, err2 := strconv.Atoi(hi)
	return minAge, maxAge, err1 == nil && err2 == nil
}

// YearsBetween counts whole years from born to now.
func YearsBetween(born, now time.Time) int {
	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	return years
}

func validateEmailList(fl validator.FieldLevel) bool {
	for _, entry := range strings.Split(fl.Field().String(), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		addr, err := mail.ParseAddress(entry)
		if err != nil || addr.Address != entry {
			return false
		}
	}
	return true
}

// validateRecipients requires at least one non-blank address in a comma separated list.
func validateRecipients(fl validator.FieldLevel) bool {
	m := domain.Message{Receiver: fl.Field().String()}
	return len(m.Recipients()) > 0
}

// validateSchedule rejects a scheduled send whose date and time are already past.
func (v *Validator) validateSchedule(sl validator.StructLevel) {
	f := sl.Current().Interface().(MessageForm)
	if f.Choice != ChoiceSchedule {
		return
	}
	at, err := f.ScheduledAt()
	if err != nil {
		return // reported by datefmt/timefmt
	}
	if at.Before(v.now().Truncate(time.Minute)) {
		sl.ReportError(f.Date, "date", "Date", "notpast", "")
	}
}
