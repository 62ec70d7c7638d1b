package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var inputValidator = validator.New(validator.WithRequiredStructEnabled())

func validateInput(ctx context.Context, input any) error {
	err := inputValidator.StructCtx(ctx, input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(parts, ", "))
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
