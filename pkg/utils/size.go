package utils

import "fmt"

var units = []struct {
	limit  int64
	suffix string
}{
	{1 << 40, "TB"},
	{1 << 30, "GB"},
	{1 << 20, "MB"},
	{1 << 10, "KB"},
}

// HumanizeBytes formats a byte count into a readable string, e.g. "2.25 GB".
func HumanizeBytes(b int64) string {
	for _, u := range units {
		if b >= u.limit {
			return fmt.Sprintf("%.2f %s", float64(b)/float64(u.limit), u.suffix)
		}
	}
	return fmt.Sprintf("%d B", b)
}

// HumanizeBytesCompact is the space-free single-letter variant, e.g. "2.25G".
func HumanizeBytesCompact(b int64) string {
	for _, u := range units {
		if b >= u.limit {
			return fmt.Sprintf("%.2f%s", float64(b)/float64(u.limit), u.suffix[:1])
		}
	}
	return fmt.Sprintf("%dB", b)
}
