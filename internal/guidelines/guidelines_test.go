package guidelines

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/recode/internal/models"
)

func TestDefault(t *testing.T) {
	c := Default()
	names := c.Names()
	require.NotEmpty(t, names)
	assert.Equal(t, None, names[0], "sentinel should be listed first")
	assert.Contains(t, names, "Fix Off-By-One Errors")

	body, ok := c.Lookup(None)
	assert.True(t, ok)
	assert.Empty(t, body)
}

func TestResolve(t *testing.T) {
	c := Default()

	t.Run("upload wins", func(t *testing.T) {
		uploaded := "U"
		assert.Equal(t, "U", c.Resolve("Fix Off-By-One Errors", &uploaded))
		assert.Equal(t, "U", c.Resolve(None, &uploaded))
		assert.Equal(t, "U", c.Resolve("no such template", &uploaded))
	})

	t.Run("empty upload still wins", func(t *testing.T) {
		empty := ""
		assert.Equal(t, "", c.Resolve("Fix Off-By-One Errors", &empty))
	})

	t.Run("template body", func(t *testing.T) {
		want, _ := c.Lookup("Fix Off-By-One Errors")
		require.NotEmpty(t, want)
		assert.Equal(t, want, c.Resolve("Fix Off-By-One Errors", nil))
	})

	t.Run("sentinel and unknown", func(t *testing.T) {
		assert.Equal(t, "", c.Resolve(None, nil))
		assert.Equal(t, "", c.Resolve("missing", nil))
	})
}

func TestTemplates_ReturnsCopy(t *testing.T) {
	c := Default()
	ts := c.Templates()
	ts[1].Body = "changed"

	body, _ := c.Lookup(ts[1].Name)
	assert.NotEqual(t, "changed", body)
}

func TestMerge(t *testing.T) {
	c := Default()
	merged := c.Merge([]models.GuidelineTemplate{
		{Name: "Add Comments", Body: "house comments"},
		{Name: "House Style", Body: "tabs"},
	})

	body, ok := merged.Lookup("Add Comments")
	require.True(t, ok)
	assert.Equal(t, "house comments", body)

	names := merged.Names()
	assert.Equal(t, "House Style", names[len(names)-1])
	assert.Len(t, names, len(c.Names())+1)

	original, _ := c.Lookup("Add Comments")
	assert.NotEqual(t, "house comments", original, "merge must not modify the receiver")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		require.NoError(t, os.WriteFile(path, []byte("templates:\n  - name: \" House Style \"\n    body: |\n      - Use tabs.\n"), 0644))

		ts, err := LoadFile(path)
		require.NoError(t, err)
		require.Len(t, ts, 1)
		assert.Equal(t, "House Style", ts[0].Name)
		assert.Equal(t, "- Use tabs.\n", ts[0].Body)
	})

	t.Run("missing name", func(t *testing.T) {
		path := filepath.Join(dir, "noname.yaml")
		require.NoError(t, os.WriteFile(path, []byte("templates:\n  - body: x\n"), 0644))

		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no name")
	})

	t.Run("reserved name", func(t *testing.T) {
		path := filepath.Join(dir, "reserved.yaml")
		require.NoError(t, os.WriteFile(path, []byte("templates:\n  - name: None\n    body: x\n"), 0644))

		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reserved")
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("templates: [\n"), 0644))

		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}
