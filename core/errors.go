package core

// FieldError is used to indicate an error with a specific form field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError blocks a submission before it reaches the network.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewValidationErrorFromMap builds a ValidationError out of a {field: message} map.
func NewValidationErrorFromMap(fields map[string]string) error {
	err := &ValidationError{Fields: make([]FieldError, 0, len(fields))}
	for fld, msg := range fields {
		err.Fields = append(err.Fields, FieldError{Field: fld, Error: msg})
	}
	return err
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return "invalid input"
		}
		return ""
	}
	return err.Err.Error()
}

// FieldMap returns the field-keyed error map shown inline next to the form fields.
func (err ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	fldErrs := make(map[string]string, len(err.Fields))
	for _, fErr := range err.Fields {
		fldErrs[fErr.Field] = fErr.Error
	}
	return fldErrs
}
