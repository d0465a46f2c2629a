package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunHelp(t *testing.T) {
	assert.Equal(t, 0, run([]string{"--help"}))
}

func TestRunMissingPort(t *testing.T) {
	assert.Equal(t, 1, run([]string{}))
}

func TestRunInvalidPort(t *testing.T) {
	assert.Equal(t, 1, run([]string{"--port", "999999"}))
}
