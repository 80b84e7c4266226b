package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	v, c, d := Version, Commit, Date
	defer func() { Version, Commit, Date = v, c, d }()

	Version, Commit, Date = "1.2.0", "abc123", "2026-01-02"
	assert.Equal(t, "1.2.0 (abc123) 2026-01-02", String())

	Commit, Date = "abc123", ""
	assert.Equal(t, "1.2.0 (abc123)", String())
}
