package postgres

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Libasse27/erp-senegal-sub002/internal/domain"
)

// SQLSTATE usados para traducir errores a dominio.
const (
	codeUniqueViolation  = "23505"
	codeLockNotAvailable = "55P03"
)

// psql builder con placeholders $1, $2...
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isLockNotAvailable lock_timeout agotado esperando un bloqueo de fila (55P03).
func isLockNotAvailable(err error) bool {
	return pgCode(err) == codeLockNotAvailable
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// lockError traduce contención de la base a domain.ErrLockTimeout (reintentable).
// Una inserción concurrente de la misma clave también se reporta como contención.
func lockError(key string, err error) error {
	if isLockNotAvailable(err) || isUniqueViolation(err) {
		return &domain.LockTimeoutError{Key: key, Err: err}
	}
	return nil
}
