package semantic

import "fmt"

// secondsLadder promotes seconds to the largest unit that divides evenly.
// Days promote to weeks only when divisible by 7.
var secondsLadder = []struct {
	divisor int64
	unit    string
}{
	{60, "m"},
	{60, "h"},
	{24, "d"},
	{7, "w"},
}

// StringifySeconds renders a duration in whole seconds as a compact unit
// string: "2m", "12d". Zero renders as "0". A value that does not divide
// evenly into the next unit stays at the current one, so 1036800 seconds
// is "12d", not a fraction of a week.
func StringifySeconds(seconds int64) string {
	if seconds == 0 {
		return "0"
	}
	value := seconds
	unit := "s"
	for _, step := range secondsLadder {
		if value%step.divisor != 0 {
			break
		}
		value /= step.divisor
		unit = step.unit
	}
	return fmt.Sprintf("%d%s", value, unit)
}

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// StringifyBytes renders a byte count using the largest binary unit that
// divides evenly. Zero renders as "0".
func StringifyBytes(n int64) string {
	if n == 0 {
		return "0"
	}
	value := n
	unit := 0
	for unit < len(byteUnits)-1 && value%1024 == 0 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%d%s", value, byteUnits[unit])
}

// ApproxBytes renders a byte count as an approximate human hint, e.g.
// "4.2 GiB", used for form help text rather than exact display.
func ApproxBytes(n int64) string {
	value := float64(n)
	unit := 0
	for unit < len(byteUnits)-1 && value >= 1024 {
		value /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d %s", n, byteUnits[0])
	}
	return fmt.Sprintf("%.1f %s", value, byteUnits[unit])
}
