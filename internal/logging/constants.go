package logging

// Standardized field names for structured logging.
const (
	FieldFile        = "file_path"
	FieldSource      = "source"
	FieldCountryCode = "country_code"
	FieldCountry     = "country"
	FieldEntity      = "entity"
	FieldTaxCode     = "tax_code"
	FieldHandler     = "handler"
	FieldLogger      = "logger"
	FieldReason      = "reason"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldCount       = "count"
	FieldAppDir      = "app_dir"
)
