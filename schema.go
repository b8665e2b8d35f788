package datatable

// Column is one column's name and inferred (or declared) Kind.
type Column struct {
	Name string
	Kind Kind
}

// Schema is the ordered column list a table commits into. It is inferred
// once from a sample of the first populated chunk's rows (see
// column_inference.go) unless the caller supplies one explicitly in
// ReaderConfig.Columns.
type Schema []Column

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Header converts the schema's names into a Header.
func (s Schema) Header() Header {
	return newHeader(s.Names())
}
