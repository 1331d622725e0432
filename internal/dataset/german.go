package dataset

// The German credit data ships with coded categorical levels (A30, A151,
// ...). The analysis collapses them into a handful of readable groups
// before any modeling happens.

// OutcomeColumn is the binary default flag; the numeric code 1 marks a
// default.
const OutcomeColumn = "Default"

// GermanColumns lists the raw CSV columns the analysis uses.
func GermanColumns() []ColumnSpec {
	return []ColumnSpec{
		{Name: OutcomeColumn, Kind: Numeric},
		{Name: "duration", Kind: Numeric},
		{Name: "amount", Kind: Numeric},
		{Name: "installment", Kind: Numeric},
		{Name: "age", Kind: Numeric},
		{Name: "history", Kind: Categorical},
		{Name: "purpose", Kind: Categorical},
		{Name: "foreign", Kind: Categorical},
		{Name: "housing", Kind: Categorical},
	}
}

// GermanRecoders returns the collapse mappings, in application order.
// Vacation loans (A47) are grouped with education so every purpose code has
// a destination.
func GermanRecoders() []Recoder {
	return []Recoder{
		{
			Field: "history",
			Mapping: map[string]string{
				"A30": "good", "A31": "good",
				"A32": "poor", "A33": "poor",
				"A34": "terrible",
			},
		},
		{
			Field: "purpose",
			Mapping: map[string]string{
				"A40":  "newcar",
				"A41":  "usedcar",
				"A42":  "goods/repair",
				"A43":  "goods/repair",
				"A44":  "goods/repair",
				"A45":  "goods/repair",
				"A46":  "edu",
				"A47":  "edu",
				"A48":  "edu",
				"A49":  "biz",
				"A410": "biz",
			},
		},
		{
			Field: "foreign",
			Mapping: map[string]string{
				"A201": "foreign",
				"A202": "german",
			},
		},
		{
			Field: "housing",
			As:    "rent",
			Mapping: map[string]string{
				"A151": "yes",
				"A152": "no",
				"A153": "no",
			},
		},
	}
}

// LoadGermanCredit reads the credit CSV, applies the collapse mappings, and
// returns the analysis columns in their modeling order.
func LoadGermanCredit(path string) (*Table, error) {
	t, err := LoadCSV(path, GermanColumns())
	if err != nil {
		return nil, err
	}
	for _, r := range GermanRecoders() {
		if err := r.Apply(t); err != nil {
			return nil, err
		}
	}
	return t.Select(OutcomeColumn, "duration", "amount", "installment", "age",
		"history", "purpose", "foreign", "rent")
}
