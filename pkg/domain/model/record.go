package model

import (
	"github.com/secmon-lab/suistat/pkg/domain/types"
)

// Column names of the tabular dataset
const (
	ColumnCountry     = "country"
	ColumnYear        = "year"
	ColumnSex         = "sex"
	ColumnAge         = "age"
	ColumnSuicidesNo  = "suicides_no"
	ColumnSuicideNoV1 = "suicide_no" // older exports use the singular form
)

// Row is a raw dataset row keyed by column name. Values are untrimmed text.
type Row map[string]string

// Record is a single parsed observation of the dataset
type Record struct {
	Country      string
	Year         int
	Sex          types.Sex
	AgeBracket   string
	SuicideCount int
}

// Selection is a snapshot of the three selection widgets
type Selection struct {
	Country   string          `json:"country"`
	Year      int             `json:"year"`
	ChartKind types.ChartKind `json:"chart"`
}

// YearVisible reports whether the year widget is shown for the selected chart kind
func (s Selection) YearVisible() bool {
	return s.ChartKind == types.ChartKindBar
}
