package attendance

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestInPlaceholders(t *testing.T) {
	assert.Equal(t, "$1", inPlaceholders(1))
	assert.Equal(t, "$1,$2,$3", inPlaceholders(3))
	assert.Equal(t, "", inPlaceholders(0))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
	assert.False(t, isUniqueViolation(nil))
}
