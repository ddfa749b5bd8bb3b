package leave

import (
	"errors"
	"net/http"

	leaveerrors "go-leavechat/internal/leave/errors"
	"go-leavechat/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// mapStorageError wraps driver-level failures into the storage sentinel so
// callers (and the chat layer) never see raw postgres errors. Domain
// errors pass through untouched, and record-not-found is left for the
// caller to interpret in context.
func mapStorageError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// A unique violation here means two confirmations raced; ask the
	// client to retry rather than reporting the store as down.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperror.Wrap(err,
			apperror.CodeConflict,
			"a conflicting update happened, please retry",
			http.StatusConflict,
		)
	}

	return apperror.Wrap(err,
		leaveerrors.ErrStorageFailure.Code,
		leaveerrors.ErrStorageFailure.Message,
		leaveerrors.ErrStorageFailure.HTTPStatus,
	)
}
