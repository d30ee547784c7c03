package query

import "strings"

// Strings trims a multi-valued URL query parameter, dropping empty entries.
// No separator is interpreted, so individual values may contain any
// character the URL encoding allows, including commas.
func Strings(vals []string) []string {
	var res []string
	for _, v := range vals {
		if clean := strings.TrimSpace(v); clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
