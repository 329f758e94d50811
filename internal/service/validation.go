package service

import (
	"errors"
	"strings"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var validate = validator.New()

// All user-supplied free text is plain text: every tag and attribute is
// stripped before length validation so markup cannot smuggle a too-short
// or too-long value past the bounds.
var stripMarkup = bluemonday.StrictPolicy()

func sanitizeText(text string) string {
	return strings.TrimSpace(stripMarkup.Sanitize(text))
}

// checkInput runs struct validation and converts the first failure into a
// typed ValidationError so no raw validator error crosses the service
// boundary.
func checkInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &domain.ValidationError{
			Field:  verrs[0].Field(),
			Reason: "violates " + verrs[0].Tag() + " constraint",
		}
	}
	return err
}
