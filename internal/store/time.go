package store

import (
	"fmt"
	"time"
)

// storedTimeFormats covers the timestamp renderings the sqlite driver
// may hand back for DATETIME columns.
var storedTimeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func parseStoredTime(s string) (time.Time, error) {
	for _, layout := range storedTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized stored timestamp %q", s)
}
