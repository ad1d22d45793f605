package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndentExpand(t *testing.T) {
	testData := map[string]struct {
		indent   string
		growth   int
		expected string
	}{
		"no growth":    {"  ", 0, ""},
		"single":       {"  ", 1, "  "},
		"multiple":     {"\t", 3, "\t\t\t"},
		"empty indent": {"", 4, ""},
		"negative":     {"  ", -2, ""},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, IndentExpand(td.indent, td.growth))
		})
	}
}
