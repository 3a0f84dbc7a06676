package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("active")
	assert.Equal(t, nil, err)
	assert.Equal(t, StatusActive, status)

	status, err = ParseStatus("inactive")
	assert.Equal(t, nil, err)
	assert.Equal(t, StatusInactive, status)
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	for _, value := range []string{"", "paused", "ACTIVE", "Active", "cancelled"} {
		_, err := ParseStatus(value)
		assert.NotNil(t, err, value)
	}
}

func TestIsActive(t *testing.T) {
	active := Supporter{Status: StatusActive}
	inactive := Supporter{Status: StatusInactive}
	assert.True(t, active.IsActive())
	assert.False(t, inactive.IsActive())
}
