package loc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineColumn(t *testing.T) {
	src := "abc\ndef\nghi"

	line, col := LineColumn(src, 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	line, col = LineColumn(src, 5)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	line, col = LineColumn(src, 100)
	assert.Equal(t, 3, line)
	assert.Equal(t, 4, col)
}

func TestRangeEnd(t *testing.T) {
	r := Range{Loc: Loc{Start: 4}, Len: 3}
	assert.Equal(t, 7, r.End())
}
