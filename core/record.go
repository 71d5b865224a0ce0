package core

// Record pairs a row of values with the header naming them. A record is
// immutable once produced - With and Without return copies, so a stage can
// never change a record another stage already saw.
type Record struct {
	header Header
	values Row
}

func NewRecord(header Header, values Row) Record {
	return Record{
		header: header,
		values: values,
	}
}

func (r Record) Header() Header {
	return r.header
}

// Values returns a copy of the underlying row.
func (r Record) Values() Row {
	values := make(Row, len(r.values))
	copy(values, r.values)
	return values
}

func (r Record) Len() int {
	return len(r.values)
}

// Get returns the value of a named field.
func (r Record) Get(field string) (any, bool) {
	for i, name := range r.header {
		if name == field && i < len(r.values) {
			return r.values[i], true
		}
	}
	return nil, false
}

// With returns a copy of the record with the named field set to value.
// An unknown field is appended, which is how enrichment stages add fields.
func (r Record) With(field string, value any) Record {
	header := make(Header, len(r.header))
	copy(header, r.header)
	values := make(Row, len(r.values))
	copy(values, r.values)

	for i, name := range header {
		if name == field {
			values[i] = value
			return Record{header: header, values: values}
		}
	}

	return Record{
		header: append(header, field),
		values: append(values, value),
	}
}

// Without returns a copy of the record with the named field removed.
// Removing an unknown field is a no-op.
func (r Record) Without(field string) Record {
	header := make(Header, 0, len(r.header))
	values := make(Row, 0, len(r.values))

	for i, name := range r.header {
		if name == field {
			continue
		}
		header = append(header, name)
		if i < len(r.values) {
			values = append(values, r.values[i])
		}
	}

	return Record{header: header, values: values}
}
