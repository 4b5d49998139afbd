package feecsv

// Profile describes the column layout of a fee assignment sheet. Adding a new
// layout is adding an entry to profiles.
type Profile struct {
	Name       string
	StudentCol string // student UUID or roll number
	YearCol    string
	TypeCol    string
	AmountCol  string
	DueCol     string
	RemarksCol string // optional
}

func (p Profile) requiredCols() []string {
	return []string{p.StudentCol, p.YearCol, p.TypeCol, p.AmountCol, p.DueCol}
}

// profiles are tried in order. Header names are matched case-insensitively.
var profiles = []Profile{
	{
		Name:       "ledger",
		StudentCol: "student_id",
		YearCol:    "academic_year",
		TypeCol:    "fee_type",
		AmountCol:  "total_amount",
		DueCol:     "due_date",
		RemarksCol: "remarks",
	},
	{
		Name:       "roster",
		StudentCol: "roll number",
		YearCol:    "academic year",
		TypeCol:    "fee type",
		AmountCol:  "amount",
		DueCol:     "due date",
		RemarksCol: "remarks",
	},
}
