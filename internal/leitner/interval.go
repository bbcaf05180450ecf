package leitner

import "time"

// MaxBox is the highest Leitner box.
const MaxBox = 5

const day = 24 * time.Hour

// boxIntervals holds the base review interval for boxes 1..MaxBox.
var boxIntervals = [MaxBox + 1]time.Duration{
	1: 0,
	2: 1 * day,
	3: 3 * day,
	4: 7 * day,
	5: 21 * day,
}

// IntervalFor returns the base review interval of a box. Values outside
// 1..MaxBox are treated as the most advanced box.
func IntervalFor(box int) time.Duration {
	if box < 1 || box > MaxBox {
		return boxIntervals[MaxBox]
	}
	return boxIntervals[box]
}
