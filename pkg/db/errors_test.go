package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	pgxErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_reviews_order_buyer"}

	if !IsUniqueViolation(pgxErr, "") {
		t.Fatal("expected pgx unique violation to be detected")
	}
	if !IsUniqueViolation(pgxErr, "idx_reviews_order_buyer") {
		t.Fatal("expected constraint match")
	}
	if IsUniqueViolation(pgxErr, "other_constraint") {
		t.Fatal("expected mismatch for unrelated constraint")
	}

	pqErr := &pq.Error{Code: "23505", Constraint: "users_email_key"}
	if !IsUniqueViolation(pqErr, "users_email_key") {
		t.Fatal("expected pq unique violation to be detected")
	}

	plain := errors.New(`duplicate key value violates unique constraint "users_email_key"`)
	if !IsUniqueViolation(plain, "users_email_key") {
		t.Fatal("expected message sniffing fallback to match")
	}

	sqlite := errors.New("UNIQUE constraint failed: reviews.order_id, reviews.buyer_id")
	if !IsUniqueViolation(sqlite, "") {
		t.Fatal("expected sqlite unique violation to be detected")
	}

	if IsUniqueViolation(nil, "") {
		t.Fatal("expected nil error to report false")
	}
}

func TestIsRetryableTxError(t *testing.T) {
	serialization := fmt.Errorf("executing: %w", &pgconn.PgError{Code: "40001"})
	if !IsRetryableTxError(serialization) {
		t.Fatal("expected serialization failure to be retryable")
	}

	deadlock := &pq.Error{Code: "40P01"}
	if !IsRetryableTxError(deadlock) {
		t.Fatal("expected deadlock to be retryable")
	}

	unique := &pgconn.PgError{Code: "23505"}
	if IsRetryableTxError(unique) {
		t.Fatal("expected unique violation to not be retryable")
	}

	if IsRetryableTxError(errors.New("connection refused")) {
		t.Fatal("expected unrelated error to not be retryable")
	}
}
