package car

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListed(t *testing.T) {
	now := time.Now()
	assert.True(t, (&Car{}).Listed())
	assert.False(t, (&Car{IsSold: true}).Listed())
	assert.False(t, (&Car{DeletedAt: &now}).Listed())
}

func TestAddedSince(t *testing.T) {
	since := time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)
	assert.True(t, (&Car{CreatedAt: since}).AddedSince(since))
	assert.True(t, (&Car{CreatedAt: since.Add(time.Hour)}).AddedSince(since))
	assert.False(t, (&Car{CreatedAt: since.Add(-time.Second)}).AddedSince(since))
}
