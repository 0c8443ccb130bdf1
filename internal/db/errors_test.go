package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"simple-store/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify(t *testing.T) {
	plain := errors.New("boom")
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, want: domain.ErrConstraintViolation},
		{name: "check", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23514"}), want: domain.ErrConstraintViolation},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, want: domain.ErrStorageUnavailable},
		{name: "admin shutdown", err: &pgconn.PgError{Code: "57P01"}, want: domain.ErrStorageUnavailable},
		{name: "deadline", err: context.DeadlineExceeded, want: domain.ErrStorageUnavailable},
		{name: "wrapped acquire deadline", err: fmt.Errorf("begin: %w", context.DeadlineExceeded), want: domain.ErrStorageUnavailable},
		{name: "other", err: plain, want: plain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v in chain, got %v", tc.want, got)
			}
			if !errors.Is(got, tc.err) {
				t.Fatalf("original error lost: %v", got)
			}
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	if Classify(nil) != nil {
		t.Fatalf("expected nil")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23505"})) {
		t.Fatalf("expected unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key is not a unique violation")
	}
}
