package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbridge/compiler/internal/scene"
	"github.com/flowbridge/compiler/internal/validate"
)

func TestInteractionsWithLiveTargetsKept(t *testing.T) {
	node := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock}
	p := payloadOf([]*scene.Node{node}, nil)
	p.Payload.IX2.Interactions = []scene.Interaction{
		{ID: "ix-1", Trigger: "click", Target: node.ID},
	}

	_, embeds := newGate().Run(p)
	require.Len(t, p.Payload.IX2.Interactions, 1)
	assert.Empty(t, embeds.JS)
}

func TestBrokenInteractionConvertsToScript(t *testing.T) {
	node := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock}
	p := payloadOf([]*scene.Node{node}, nil)
	p.Payload.IX2.Interactions = []scene.Interaction{
		{ID: "ix-scroll", Trigger: "scroll", Target: "00000000-dead-4000-8000-000000000000"},
		{ID: "ix-keep", Trigger: "hover", Target: node.ID},
	}

	report, embeds := newGate().Run(p)
	require.Len(t, p.Payload.IX2.Interactions, 1)
	assert.Equal(t, "ix-keep", p.Payload.IX2.Interactions[0].ID)

	assert.Contains(t, embeds.JS, "gsap")
	assert.Contains(t, embeds.JS, "ScrollTrigger")
	assert.Contains(t, embeds.JS, "ix-scroll")
	assert.True(t, hasIssue(report.Warnings, validate.CodeInteractionConverted))
}

func TestUnconvertibleInteractionStripsAll(t *testing.T) {
	node := &scene.Node{ID: scene.NewID(), Type: scene.NodeBlock}
	p := payloadOf([]*scene.Node{node}, nil)
	p.Payload.IX2.Interactions = []scene.Interaction{
		{ID: "ix-keep", Trigger: "click", Target: node.ID},
		{ID: "ix-weird", Trigger: "teleport", Target: "00000000-dead-4000-8000-000000000000"},
	}

	report, _ := newGate().Run(p)
	assert.Empty(t, p.Payload.IX2.Interactions)
	assert.True(t, hasIssue(report.Warnings, validate.CodeInteractionsStripped))
}
