package chart

// Test-only accessors for formatting and tick helpers
var (
	FormatSI     = formatSI
	FormatRate   = formatRate
	FormatFixed2 = formatFixed2
	Ticks        = ticks
)
