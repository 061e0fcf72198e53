package table

// Diagnostics collects data-quality and mapping issues for the caller to
// display. Issues are never fatal; downstream stages degrade gracefully.
type Diagnostics struct {
	// UnmappedFields maps canonical field names that could not be reconciled
	// to a human-readable reason
	UnmappedFields map[string]string `json:"unmapped_fields,omitempty"`

	// Warnings lists non-critical issues or unusual data patterns
	Warnings []string `json:"warnings,omitempty"`

	// SourceInfo provides information about the data source
	SourceInfo map[string]interface{} `json:"source_info,omitempty"`
}

// NewDiagnostics creates a new diagnostics instance.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		UnmappedFields: make(map[string]string),
		Warnings:       make([]string, 0),
		SourceInfo:     make(map[string]interface{}),
	}
}

// AddUnmappedField records a canonical field that could not be mapped.
func (d *Diagnostics) AddUnmappedField(field, reason string) {
	if d.UnmappedFields == nil {
		d.UnmappedFields = make(map[string]string)
	}
	d.UnmappedFields[field] = reason
}

// AddWarning adds a warning to the diagnostics.
func (d *Diagnostics) AddWarning(warning string) {
	d.Warnings = append(d.Warnings, warning)
}

// SetSourceInfo sets source information.
func (d *Diagnostics) SetSourceInfo(key string, value interface{}) {
	if d.SourceInfo == nil {
		d.SourceInfo = make(map[string]interface{})
	}
	d.SourceInfo[key] = value
}

// HasIssues returns true if there are any unmapped fields or warnings.
func (d *Diagnostics) HasIssues() bool {
	return len(d.UnmappedFields) > 0 || len(d.Warnings) > 0
}
