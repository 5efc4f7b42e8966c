package optional

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	present := Of(42)
	v, ok := present.Get()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, "42", present.String())
	assert.Equal(t, 42, present.Or(7))

	absent := None[int]()
	assert.False(t, absent.Present())
	assert.Equal(t, NA, absent.String())
	assert.Equal(t, 7, absent.Or(7))
}

func TestFormat(t *testing.T) {
	twoDecimals := func(f float64) string { return fmt.Sprintf("%0.2f", f) }

	assert.Equal(t, "0.85", Of(0.849999).Format(twoDecimals))
	assert.Equal(t, "1.00", Of(1.0).Format(twoDecimals))
	assert.Equal(t, NA, None[float64]().Format(twoDecimals))
}

func TestFromOK(t *testing.T) {
	assert.Equal(t, Of(true), FromOK(true, true))
	assert.Equal(t, None[bool](), FromOK(true, false))
}
