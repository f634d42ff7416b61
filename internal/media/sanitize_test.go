package media

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Run("replaces spaces with hyphens", func(t *testing.T) {
		assert.Equal(t, "Garden-of-Forking-Paths", Sanitize("Garden of Forking Paths"))
	})

	t.Run("removes unsafe filesystem characters", func(t *testing.T) {
		assert.Equal(t, "ab", Sanitize(`<a>:"/b\|?*`))
	})

	t.Run("collapses whitespace runs", func(t *testing.T) {
		assert.Equal(t, "a-b", Sanitize("a \t\n b"))
	})

	t.Run("collapses repeated hyphens", func(t *testing.T) {
		assert.Equal(t, "a-b", Sanitize("a---b"))
		assert.Equal(t, "a-b", Sanitize("a - - b"))
	})

	t.Run("strips leading and trailing hyphens", func(t *testing.T) {
		assert.Equal(t, "name", Sanitize("--name--"))
		assert.Equal(t, "name", Sanitize("  name  "))
	})

	t.Run("removes control characters", func(t *testing.T) {
		assert.Equal(t, "ab", Sanitize("a\x00\x1fb"))
	})

	t.Run("keeps unicode letters", func(t *testing.T) {
		assert.Equal(t, "Jardín-де-Größe", Sanitize("Jardín де Größe"))
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Equal(t, "", Sanitize(""))
	})

	t.Run("input of only unsafe characters yields empty output", func(t *testing.T) {
		assert.Equal(t, "", Sanitize(`   <>:"/\|?* `))
	})

	t.Run("idempotent over varied inputs", func(t *testing.T) {
		inputs := []string{
			"Garden of Forking Paths",
			"--a  b--",
			`x<y>z`,
			"",
			"\t\n",
			"plain-name.png",
			"émoji 🎨 art",
		}
		for i, in := range inputs {
			t.Run(fmt.Sprintf("input_%d", i), func(t *testing.T) {
				once := Sanitize(in)
				assert.Equal(t, once, Sanitize(once))
			})
		}
	})
}
