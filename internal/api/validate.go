package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/IlyasAtabaev731/expense-tracker/internal/domain/models"
)

const dateLayout = "2006-01-02"

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("expense_type", func(fl validator.FieldLevel) bool {
		return models.ExpenseType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("expense_date", func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})

	return v
}

// parseDate accepts a bare calendar date in the local zone or RFC 3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// validationMessage renders validator errors as one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "gt", "lt":
			msgs = append(msgs, fmt.Sprintf("%s is out of range", fe.Field()))
		case "expense_type":
			msgs = append(msgs, "Please select a correct expense type!")
		case "expense_date":
			msgs = append(msgs, fmt.Sprintf("%s must be YYYY-MM-DD or RFC 3339", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
