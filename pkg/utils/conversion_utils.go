package utils

import "strconv"

// Int64ToStr converts an int64 to its string representation.
func Int64ToStr(num int64) string {
	return strconv.FormatInt(num, 10)
}

// ParseID parses a path parameter as an int64 record identifier.
func ParseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
