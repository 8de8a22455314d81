package procident

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameReturnsSomething(t *testing.T) {
	name, err := Name()
	assert.Nil(t, err)
	assert.NotEqual(t, "", name)
}

func TestNormalizeLowercases(t *testing.T) {
	if runtime.GOOS == "windows" {
		assert.Equal(t, "hostapp.exe", Normalize("HostApp.exe"))
		assert.Equal(t, "hostapp.exe", Normalize("HostApp"))
		return
	}
	assert.Equal(t, "hostapp", Normalize("HostApp"))
	assert.Equal(t, "hostapp", Normalize("HostApp.exe"))
}

func TestNormalizeIdempotent(t *testing.T) {
	once := Normalize("HostApp")
	assert.Equal(t, once, Normalize(once))
}
