package redisx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAppliesCommandTimeout(t *testing.T) {
	r := New("localhost:6379")
	defer r.Close()

	assert.Equal(t, 2*time.Second, r.Options().ReadTimeout)
	assert.Equal(t, 2*time.Second, r.Options().WriteTimeout)
}
