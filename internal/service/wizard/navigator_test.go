package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"slidecraft/internal/model"
)

func TestNavigatorStartsAtTemplate(t *testing.T) {
	n := NewNavigator()
	assert.Equal(t, model.StepTemplate, n.Current())
	assert.True(t, n.IsFirst())
	assert.False(t, n.IsLast())
}

func TestNavigatorGoToClamps(t *testing.T) {
	n := NewNavigator()

	assert.Equal(t, model.StepExport, n.GoTo(99))
	assert.True(t, n.IsLast())
	assert.Equal(t, model.StepTemplate, n.GoTo(-3))
	assert.Equal(t, model.StepPreview, n.GoTo(3))
}

func TestNavigatorNextPreviousAtEdges(t *testing.T) {
	n := NewNavigator()

	assert.Equal(t, model.StepTemplate, n.Previous())
	for i := 0; i < 10; i++ {
		n.Next()
	}
	assert.Equal(t, model.StepExport, n.Current())
	assert.Equal(t, model.StepPreview, n.Previous())

	n.Reset()
	assert.Equal(t, 0, n.Index())
}

func TestNavigatorState(t *testing.T) {
	n := NewNavigator()
	n.GoTo(2)

	st := n.State()
	assert.Equal(t, 2, st.Current)
	assert.Equal(t, "Content", st.CurrentName)
	assert.True(t, st.CanGoBack)
	assert.False(t, st.IsLast)
	assert.Len(t, st.Steps, model.StepCount)
	assert.True(t, st.Steps[0].Completed)
	assert.True(t, st.Steps[1].Completed)
	assert.True(t, st.Steps[2].Active)
	assert.False(t, st.Steps[3].Completed)
	assert.Equal(t, "Export", st.Steps[4].Name)
}

// 任意 next/previous/goTo 序列后，索引始终位于 [0, 4]
func TestNavigatorBoundsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := NewNavigator()
		ops := rapid.SliceOfN(rapid.IntRange(0, 2), 0, 200).Draw(t, "ops")

		for i, op := range ops {
			switch op {
			case 0:
				n.Next()
			case 1:
				n.Previous()
			default:
				target := rapid.IntRange(-1000, 1000).Draw(t, "target")
				got := n.GoTo(target)
				if target >= 0 && target < model.StepCount && int(got) != target {
					t.Fatalf("op %d: goTo(%d) landed on %d", i, target, got)
				}
			}
			if n.Index() < 0 || n.Index() > model.StepCount-1 {
				t.Fatalf("op %d: index %d out of bounds", i, n.Index())
			}
		}
	})
}
