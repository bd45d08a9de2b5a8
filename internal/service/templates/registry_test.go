package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidecraft/internal/model"
)

func TestResolveExistingID(t *testing.T) {
	r := Default()

	for _, want := range r.List() {
		got := r.Resolve(want.ID)
		assert.Equal(t, want, got)
	}
}

func TestResolveFallsBackToFirstEntry(t *testing.T) {
	r := Default()
	first := r.List()[0]

	assert.Equal(t, first, r.Resolve("nonexistent-id"))
	assert.Equal(t, first, r.Resolve(""))
	assert.Equal(t, "corporate", first.ID)
}

func TestResolveTrimsWhitespace(t *testing.T) {
	r := Default()
	assert.Equal(t, "modern", r.Resolve("  modern ").ID)
}

func TestNewRegistryRejectsInvalidInput(t *testing.T) {
	_, err := NewRegistry(nil)
	require.Error(t, err)

	_, err = NewRegistry([]model.TemplateStyle{{ID: "a"}, {ID: "a"}})
	require.Error(t, err)

	_, err = NewRegistry([]model.TemplateStyle{{ID: " "}})
	require.Error(t, err)
}

func TestListReturnsCopy(t *testing.T) {
	r := Default()
	list := r.List()
	list[0].Name = "mutated"

	assert.Equal(t, "Corporate Pro", r.List()[0].Name)
	assert.Equal(t, 4, r.Len())
}
