package lazyline

import (
	"strings"

	"github.com/samber/lo"
)

// ParseTag splits a wildcard tag body of the form "name" or
// "name,not=a|b" into the wildcard name and its exclusion list.
// Exclusions are separated by '|' when one is present and by ','
// otherwise.
func ParseTag(data string) (name string, exclude []string) {
	name, rest, found := strings.Cut(data, ",")
	name = strings.TrimSpace(name)
	if !found {
		return name, nil
	}
	rest = strings.TrimSpace(rest)
	list, ok := strings.CutPrefix(rest, "not=")
	if !ok {
		return name, nil
	}
	sep := ","
	if strings.Contains(list, "|") {
		sep = "|"
	}
	exclude = lo.Compact(lo.Map(strings.Split(list, sep), func(x string, _ int) string {
		return strings.TrimSpace(x)
	}))
	return name, exclude
}
