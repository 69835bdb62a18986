package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginCodeIsValid(t *testing.T) {
	now := time.Now()

	fresh := LoginCode{Base: Base{CreatedAt: now.Add(-time.Minute)}}
	assert.True(t, fresh.IsValid(now))

	used := LoginCode{Base: Base{CreatedAt: now.Add(-time.Minute)}, Used: true}
	assert.False(t, used.IsValid(now))

	expired := LoginCode{Base: Base{CreatedAt: now.Add(-11 * time.Minute)}}
	assert.False(t, expired.IsValid(now))

	boundary := LoginCode{Base: Base{CreatedAt: now.Add(-LoginCodeTTL)}}
	assert.False(t, boundary.IsValid(now))
}
