package gitee

import (
	"errors"
	"fmt"

	apperrors "github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/validation"
)

var errNullBody = errors.New("response body is null")

// itemError is a listed record that failed validation.
type itemError struct {
	index int
	err   error
}

func (e *itemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.index, e.err)
}

func (e *itemError) Unwrap() error { return e.err }

// validateRequest checks a request body before it is sent. Failures are
// validation AppErrors listing the offending fields.
func validateRequest(body any) error {
	err := validation.Struct(body)
	if err == nil {
		return nil
	}
	appErr := apperrors.Wrap(apperrors.ErrCodeValidation, err.Error(), err)
	var verr *validation.Error
	if errors.As(err, &verr) {
		appErr.WithDetails(verr.Fields())
	}
	return appErr
}
