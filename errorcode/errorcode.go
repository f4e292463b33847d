// Package errorcode defines the stable, machine-parseable error identifiers
// reported across the host boundary. Higher layers key localization and
// programmatic handling off these strings, so they must never change.
package errorcode

const (
	// UnknownFieldName reports a field name that does not exist in a schema.
	// Reserved in the public taxonomy; the live name-lookup path reports
	// AmbiguousFieldName for both absent and duplicated names.
	UnknownFieldName = "ARROW_TABULAR_SCHEMA_UNKNOWN_FIELD_NAME"

	// EmptySchemaNumericIndex reports numeric field indexing against a
	// schema with no fields.
	EmptySchemaNumericIndex = "ARROW_TABULAR_SCHEMA_NUMERIC_FIELD_INDEX_WITH_EMPTY_SCHEMA"

	// InvalidNumericFieldIndex reports a 1-based field index outside [1, n].
	InvalidNumericFieldIndex = "ARROW_TABULAR_SCHEMA_INVALID_NUMERIC_FIELD_INDEX"

	// AmbiguousFieldName reports a field name that cannot be referenced
	// unambiguously: it is either absent or matches more than one field.
	AmbiguousFieldName = "ARROW_TABULAR_SCHEMA_AMBIGUOUS_FIELD_NAME"

	// UnicodeConversion reports a failed UTF-16 <-> UTF-8 conversion at the
	// host boundary.
	UnicodeConversion = "UNICODE_CONVERSION_ERROR_ID"
)
