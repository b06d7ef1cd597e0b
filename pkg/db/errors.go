package db

import (
	"errors"
	"strings"

	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// OfferTargetConstraint names both the CHECK constraint and the trigger guard
// that keep coop_product_offers from having a null product and a null category.
const OfferTargetConstraint = "coop_product_offers_target_check"

// Postgres SQLSTATE codes this package cares about.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgRestrictViolation    = "23001"
	pgCheckViolation       = "23514"
	pgNotNullViolation     = "23502"
	pgInvalidTextRepr      = "22P02"
	pgGeneratedAlways      = "428C9"
	pgNumericOutOfRange    = "22003"
	pgStringDataRightTrunc = "22001"
)

// Classify maps an engine error onto the error taxonomy. It returns "" for
// errors that are not constraint violations (connection failures and the like).
func Classify(err error) pkgerrors.Code {
	if err == nil {
		return ""
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.CodeNotFound
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return classifyPostgres(pgxErr.Code, pgxErr.ConstraintName, pgxErr.Message)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifyPostgres(string(pqErr.Code), pqErr.Constraint, pqErr.Message)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return classifySQLite(liteErr)
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return pkgerrors.CodeConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return pkgerrors.CodeReferential
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		if strings.Contains(err.Error(), OfferTargetConstraint) {
			return pkgerrors.CodeInvariant
		}
		return pkgerrors.CodeValidation
	}
	return ""
}

func classifyPostgres(code, constraint, message string) pkgerrors.Code {
	switch code {
	case pgUniqueViolation:
		return pkgerrors.CodeConflict
	case pgForeignKeyViolation, pgRestrictViolation:
		return pkgerrors.CodeReferential
	case pgCheckViolation:
		if constraint == OfferTargetConstraint || strings.Contains(message, OfferTargetConstraint) {
			return pkgerrors.CodeInvariant
		}
		return pkgerrors.CodeValidation
	case pgNotNullViolation, pgInvalidTextRepr, pgGeneratedAlways, pgNumericOutOfRange, pgStringDataRightTrunc:
		return pkgerrors.CodeValidation
	}
	return ""
}

func classifySQLite(err sqlite3.Error) pkgerrors.Code {
	if err.Code != sqlite3.ErrConstraint {
		return ""
	}
	switch err.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return pkgerrors.CodeConflict
	case sqlite3.ErrConstraintForeignKey:
		return pkgerrors.CodeReferential
	case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintTrigger:
		if strings.Contains(err.Error(), OfferTargetConstraint) {
			return pkgerrors.CodeInvariant
		}
		return pkgerrors.CodeValidation
	case sqlite3.ErrConstraintNotNull:
		return pkgerrors.CodeValidation
	}
	return pkgerrors.CodeValidation
}

// Translate wraps err in a typed error whose code follows Classify; anything
// unclassified becomes a dependency error. Typed errors pass through untouched.
func Translate(err error, message string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	code := Classify(err)
	if code == "" {
		code = pkgerrors.CodeDependency
	}
	return pkgerrors.Wrap(code, err, message)
}

// IsUniqueViolation reports whether err is a uniqueness collision on any engine.
func IsUniqueViolation(err error) bool {
	return Classify(err) == pkgerrors.CodeConflict
}

// TranslateFind converts a lookup failure: missing rows become "<entity> not
// found", anything else goes through Translate.
func TranslateFind(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return Translate(err, "load "+entity)
}
