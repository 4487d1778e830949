package database

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
)

func TestDuplicateError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "email constraint",
			err:  &pq.Error{Code: "23505", Constraint: emailConstraint},
			want: ErrDuplicateEmail,
		},
		{
			name: "provider identity constraint",
			err:  &pq.Error{Code: "23505", Constraint: providerIdentityConstraint},
			want: ErrDuplicateProviderIdentity,
		},
		{
			name: "other error code",
			err:  &pq.Error{Code: "23503", Constraint: emailConstraint},
			want: nil,
		},
		{
			name: "not a pq error",
			err:  errors.New("connection reset"),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := duplicateError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("duplicateError = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDuplicateError_UnknownConstraint(t *testing.T) {
	t.Parallel()

	err := duplicateError(&pq.Error{Code: "23505", Constraint: "users_pkey"})
	if err == nil {
		t.Fatal("unknown unique violation must still error")
	}
	if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicateProviderIdentity) {
		t.Error("unknown constraint must not map to a sentinel")
	}
}

func TestNullString(t *testing.T) {
	t.Parallel()

	if got := nullString(""); got.Valid {
		t.Error("empty string must map to NULL")
	}
	if got := nullString("x"); got != (sql.NullString{String: "x", Valid: true}) {
		t.Errorf("nullString(x) = %+v", got)
	}
}
