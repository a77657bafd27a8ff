package views_test

import (
	"fmt"
	"testing"

	"penumbra/internal/core"
	"penumbra/internal/domain"
	"penumbra/internal/tui/views"

	"github.com/stretchr/testify/assert"
)

func TestRenderConflicts(t *testing.T) {
	var paths []domain.GamePath
	for i := 0; i < 7; i++ {
		paths = append(paths, domain.MustGamePath(fmt.Sprintf("chara/f%d.tex", i)))
	}
	conflicts := []core.ModConflicts{
		{Other: "Tied", Paths: paths[:1]},
		{Other: "Loser", HasPriority: true, Solved: true, Paths: paths},
		{Other: "Winner", Solved: true, Manipulations: []domain.MetaKey{{Type: domain.MetaEqp}}},
	}

	out := views.RenderConflicts("Body", conflicts, 40)
	assert.Contains(t, out, "tie Tied")
	assert.Contains(t, out, "wins Loser")
	assert.Contains(t, out, "loses Winner")
	assert.Contains(t, out, "… 2 more")
	assert.Contains(t, out, "1 manipulations")
}

func TestRenderConflicts_Empty(t *testing.T) {
	assert.Contains(t, views.RenderConflicts("Body", nil, 30), "None")
	assert.NotContains(t, views.RenderConflicts("", nil, 30), "None")
}
