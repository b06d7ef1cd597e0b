package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, publicMsg: "uniqueness violation", detailsOK: true},
		{code: CodeReferential, publicMsg: "referential integrity violation", detailsOK: true},
		{code: CodeInvariant, publicMsg: "domain invariant violation", detailsOK: true},
		{code: CodeInternal, publicMsg: "internal error", retryable: true},
		{code: CodeDependency, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.PublicMessage != "internal error" {
		t.Fatalf("expected internal metadata, got %+v", meta)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeInvariant, "offer needs a target")
	if got := As(err); got == nil || got.Code() != CodeInvariant {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestCodeOfAndIsCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", New(CodeReferential, "product in use"))

	assert.Equal(t, CodeReferential, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, CodeReferential))
	assert.False(t, IsCode(wrapped, CodeConflict))
	assert.Equal(t, CodeInternal, CodeOf(stdErrors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.False(t, IsCode(nil, CodeInternal))
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23503",
		ConstraintName: "order_items_product_id_fkey",
		TableName:      "order_items",
		Message:        "update or delete on table \"products\" violates foreign key constraint",
	}
	err := Wrap(CodeReferential, pgErr, "delete product")

	dump := Dump(err)
	require.Equal(t, CodeReferential, dump.Code)
	assert.Equal(t, "23503", dump.PGCode)
	assert.Equal(t, "order_items_product_id_fkey", dump.PGConstraint)
	assert.Equal(t, "order_items", dump.PGTable)
	assert.Len(t, dump.Chain, 2)
}

func TestDumpNil(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))
}
