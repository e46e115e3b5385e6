package model

// YearTotal holds per-year sums for the line view
type YearTotal struct {
	Year   int `json:"year"`
	Total  int `json:"total"`
	Male   int `json:"male"`
	Female int `json:"female"`
}

// BracketTotal holds the sum for one age bracket
type BracketTotal struct {
	Key   string `json:"key"`
	Total int    `json:"total"`
}

// BracketSeries is the bar view series with derived scalars
type BracketSeries struct {
	Brackets   []BracketTotal `json:"brackets"`
	Lowest     BracketTotal   `json:"lowest"`
	Highest    BracketTotal   `json:"highest"`
	GrandTotal int            `json:"grand_total"`
	Average    float64        `json:"average"`
}

// IsEmpty reports whether the series has no brackets
func (s *BracketSeries) IsEmpty() bool {
	return s == nil || len(s.Brackets) == 0
}

// Keys returns the bracket keys in series order
func (s *BracketSeries) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.Brackets))
	for i, b := range s.Brackets {
		keys[i] = b.Key
	}
	return keys
}
