package db

import (
	"strconv"
	"strings"
	"time"
)

// legacyTimeLayouts are textual formats observed in documents written by
// older clients, tried in order after RFC 3339.
var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 2, 2006 at 3:04:05 PM MST",
	"2006-01-02",
}

// normalizeTimestamp converts a timestamp field read from a raw document
// into a time.Time. Documents in the wild carry timestamps as native
// timestamps, numeric epochs (seconds or milliseconds), or legacy textual
// formats; an unparseable value yields the fallback rather than failing the
// whole snapshot.
func normalizeTimestamp(v interface{}, fallback time.Time) time.Time {
	switch t := v.(type) {
	case nil:
		return fallback
	case time.Time:
		return t
	case int64:
		return epochToTime(float64(t))
	case float64:
		return epochToTime(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return fallback
		}
		for _, layout := range legacyTimeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed
			}
		}
		if epoch, err := strconv.ParseFloat(s, 64); err == nil {
			return epochToTime(epoch)
		}
		return fallback
	default:
		return fallback
	}
}

// epochToTime interprets a numeric epoch, treating magnitudes above 1e12 as
// milliseconds and anything smaller as seconds.
func epochToTime(epoch float64) time.Time {
	if epoch > 1e12 {
		return time.UnixMilli(int64(epoch)).UTC()
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}
