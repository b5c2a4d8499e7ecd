package text

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Commify renders v with thousands separators: 1234567 => 1,234,567
func Commify(v int) string { return Commify64(int64(v)) }

func Commify64(v int64) string {
	s := strconv.FormatInt(v, 10)

	var sign string
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}

	parts := make([]string, 0, (len(s)+2)/3)
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	return sign + strings.Join(parts, ",")
}

// AvailableMapKeys renders the string keys of any map as a sorted,
// quoted, comma-separated list, for embedding into help text.
func AvailableMapKeys(m interface{}) string {
	v := reflect.ValueOf(m)
	avail := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		avail = append(avail, "'"+k.String()+"'")
	}
	sort.Strings(avail)
	return strings.Join(avail, ", ")
}
