// Package util holds the text helpers shared by the model table printers
package util

import "strings"

// IndentExpand repeats indent growth times. A non-positive growth yields no indentation.
func IndentExpand(indent string, growth int) string {
	if growth <= 0 {
		return ""
	}
	return strings.Repeat(indent, growth)
}
