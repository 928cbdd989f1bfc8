package h

import (
	"strings"

	"github.com/thoas/go-funk"
)

func IsNotEmpty(s interface{}) bool {
	return !funk.IsEmpty(s)
}

// SplitList splits a comma separated list, trimming blanks and duplicates.
func SplitList(input string) []string {
	items := []string{}
	for _, item := range strings.Split(input, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return funk.UniqString(items)
}
