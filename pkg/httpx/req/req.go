package req

import (
	"errors"
	"fmt"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"currency_flip/pkg/errcodes"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary         //nolint:gochecknoglobals // skip
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

// MaxBodySize ограничивает тело запроса: набор котировок для /v1/pathfind
// редко превышает пару мегабайт.
const MaxBodySize = 8 << 20

// Read декодирует JSON-тело в dest и проверяет теги validate.
func Read(w http.ResponseWriter, r *http.Request, dest any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodySize)

	if err := json.NewDecoder(body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return failure.NewInvalidArgumentError(
				err.Error(),
				failure.WithCode(errcodes.ValidationError),
				failure.WithDescription(fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)),
			)
		}

		return failure.NewInvalidArgumentError(
			fmt.Errorf("json.Decode: %w", err).Error(),
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription("Invalid JSON"),
		)
	}

	if err := validate.StructCtx(r.Context(), dest); err != nil {
		return failure.NewInvalidArgumentError(
			"validation error",
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription(err.Error()),
		)
	}

	return nil
}
