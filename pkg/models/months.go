package models

import "time"

// MonthCodes maps the twelve futures month letters to month numbers,
// per the standard delivery-month convention (F=Jan ... Z=Dec).
var MonthCodes = map[string]int{
	"F": 1,  // January
	"G": 2,  // February
	"H": 3,  // March
	"J": 4,  // April
	"K": 5,  // May
	"M": 6,  // June
	"N": 7,  // July
	"Q": 8,  // August
	"U": 9,  // September
	"V": 10, // October
	"X": 11, // November
	"Z": 12, // December
}

// MonthToCode is the reverse mapping of MonthCodes (month number → letter).
var MonthToCode = map[int]string{}

func init() {
	for code, num := range MonthCodes {
		MonthToCode[num] = code
	}
}

// IsMonthCode reports whether code is one of the twelve valid month letters.
func IsMonthCode(code string) bool {
	_, ok := MonthCodes[code]
	return ok
}

// CodeForMonth returns the month letter for a time.Month.
func CodeForMonth(m time.Month) string {
	return MonthToCode[int(m)]
}
