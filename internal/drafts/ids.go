package drafts

import (
	"strconv"
	"sync/atomic"
	"time"
)

var lastLocalID atomic.Int64

// NextLocalID returns a unix-millisecond id that is strictly greater than any id
// handed out before in this process.
func NextLocalID(now time.Time) string {
	for {
		prev := lastLocalID.Load()
		next := now.UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if lastLocalID.CompareAndSwap(prev, next) {
			return strconv.FormatInt(next, 10)
		}
	}
}
