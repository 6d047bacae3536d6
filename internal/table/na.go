package table

// DefaultNAValues are the raw strings read as null unless disabled.
//
//nolint:gochecknoglobals // Fixed lookup table.
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a",
	"nan", "null",
}

// NASet decides which raw field values are nulls. The zero value treats
// nothing as null.
type NASet struct {
	values map[string]struct{}
}

// NewNASet builds a set from extra values, optionally including the defaults.
func NewNASet(extra []string, keepDefault bool) NASet {
	s := NASet{values: make(map[string]struct{}, len(DefaultNAValues)+len(extra))}
	if keepDefault {
		for _, v := range DefaultNAValues {
			s.values[v] = struct{}{}
		}
	}
	for _, v := range extra {
		s.values[v] = struct{}{}
	}
	return s
}

// DefaultNASet returns the set of DefaultNAValues.
func DefaultNASet() NASet { return NewNASet(nil, true) }

// Cell converts a raw field into a Cell.
func (s NASet) Cell(raw string) Cell {
	if _, ok := s.values[raw]; ok {
		return Null
	}
	return String(raw)
}
