package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	info := Info{Version: "v1.2.0", CommitHash: "0123456789abcdef", GoVersion: "go1.24.6", Platform: "linux/amd64"}
	assert.Equal(t, "pgtyped v1.2.0 (0123456, go1.24.6, linux/amd64)", info.String())

	info.CommitHash = "abc"
	assert.Contains(t, info.String(), "(abc,")
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
