package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	t.Run("embeds inputs verbatim", func(t *testing.T) {
		p := Build("int main(){return 0;}", "Add comments.")

		assert.Contains(t, p.User, "int main(){return 0;}")
		assert.Contains(t, p.User, "Add comments.")
		assert.True(t, strings.HasSuffix(p.User, Closing))
	})

	t.Run("system message sets the role", func(t *testing.T) {
		p := Build("x", "y")

		assert.Contains(t, p.System, "rewrites C code")
		assert.Contains(t, p.System, "guidelines")
		assert.Contains(t, p.System, "explains what was improved")
	})

	t.Run("source precedes guidelines", func(t *testing.T) {
		p := Build("SOURCE", "GUIDE")
		assert.Less(t, strings.Index(p.User, "SOURCE"), strings.Index(p.User, "GUIDE"))
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Build("a", "b"), Build("a", "b"))
	})
}

func TestBuildFor(t *testing.T) {
	p := BuildFor("Go", "package main", "Use gofmt.")
	assert.Contains(t, p.System, "rewrites Go code")
	assert.Contains(t, p.User, "Here is the Go code:")

	p = BuildFor("  ", "x", "y")
	assert.Contains(t, p.User, "Here is the C code:")
}

func TestBuildLargeSource(t *testing.T) {
	src := strings.Repeat("x", 10000)
	p := Build(src, "g")
	assert.Contains(t, p.User, src)
}
