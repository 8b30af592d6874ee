package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampToStock(t *testing.T) {
	assert.Equal(t, 3, clampToStock(3, 10))
	assert.Equal(t, 10, clampToStock(15, 10))
	assert.Equal(t, 10, clampToStock(10, 10))

	// non-positive stock leaves the request alone
	assert.Equal(t, 15, clampToStock(15, 0))
	assert.Equal(t, 15, clampToStock(15, -2))
}
