package httpmiddleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketExhausts(t *testing.T) {
	l := NewSimpleTokenBucket(3, 3)
	for i := 0; i < 3; i++ {
		assert.True(t, l.allow("1.2.3.4"), "request %d", i)
	}
	assert.False(t, l.allow("1.2.3.4"))
}

func TestTokenBucketPerKey(t *testing.T) {
	l := NewSimpleTokenBucket(1, 1)
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
	assert.True(t, l.allow("b"), "keys are independent")
}
