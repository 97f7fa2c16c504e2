package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"liveqa/impl/repository"
)

func TestNormalize(t *testing.T) {
	other := errors.New("connection reset")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"pgx no rows", pgx.ErrNoRows, repository.ErrNoRows},
		{"sql no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), repository.ErrNoRows},
		{"pg unique", &pgconn.PgError{Code: "23505", ConstraintName: "sessions_unique_url_slug_key"}, repository.ErrUniqueViolation},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, repository.ErrUniqueViolation},
		{"other", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("normalize(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
	if normalize(nil) != nil {
		t.Fatal("nil must stay nil")
	}
	if errors.Is(normalize(&pgconn.PgError{Code: "23503"}), repository.ErrUniqueViolation) {
		t.Fatal("foreign key violation is not a unique violation")
	}
}
