package model

// FieldType indicates the logical type of a schema column.
type FieldType int

const (
	// FieldTypeInt64 is a 64-bit signed integer column.
	FieldTypeInt64 FieldType = iota
	// FieldTypeFloat32 is a 32-bit floating point column.
	FieldTypeFloat32
)

// String returns a human-readable representation of the FieldType.
func (t FieldType) String() string {
	switch t {
	case FieldTypeInt64:
		return "int64"
	case FieldTypeFloat32:
		return "float32"
	default:
		return "unknown"
	}
}

// SchemaField is one (name, type) pair of the column layout.
type SchemaField struct {
	Name     string
	Type     FieldType
	Nullable bool // always false in the current layout
}

// Schema is the ordered column layout shared by the writer and every
// downstream reader. Both sides must agree on it bit for bit; there is
// no version negotiation.
type Schema struct {
	Fields []SchemaField
}

// DefaultSchema returns the sensor reading column layout: a millisecond
// timestamp followed by nine float32 measurements in fixed order.
func DefaultSchema() Schema {
	return Schema{
		Fields: []SchemaField{
			{Name: "timestamp", Type: FieldTypeInt64},
			{Name: "temperature", Type: FieldTypeFloat32},
			{Name: "humidity", Type: FieldTypeFloat32},
			{Name: "pressure", Type: FieldTypeFloat32},
			{Name: "pm1_0", Type: FieldTypeFloat32},
			{Name: "pm2_5", Type: FieldTypeFloat32},
			{Name: "pm10", Type: FieldTypeFloat32},
			{Name: "gas_resistance", Type: FieldTypeFloat32},
			{Name: "light", Type: FieldTypeFloat32},
			{Name: "noise", Type: FieldTypeFloat32},
		},
	}
}

// Columns returns the column names in schema order.
func (s Schema) Columns() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Arity returns the number of columns.
func (s Schema) Arity() int {
	return len(s.Fields)
}
