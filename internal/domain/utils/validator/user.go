package validator

import (
	"strings"
	"unicode/utf8"
)

func Name(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= 1 && n <= 100
}

func Gender(gender string) bool {
	return utf8.RuneCountInString(gender) == 1
}

func University(university string) bool {
	return strings.TrimSpace(university) != ""
}
