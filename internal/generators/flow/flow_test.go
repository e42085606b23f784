package flow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/margin/internal/core/domain"
)

const deployDoc = `# Runbook

## Deploy

1. Build the **image**
2. Push to registry
   - ok: continue
   - failure: retry
3. Roll out

Notes follow.

## Rollback

1. Stop traffic
2. Restore "previous" [tag]
`

func TestExtract_Blocks(t *testing.T) {
	blocks := Extract(deployDoc, 2)
	require.Len(t, blocks, 2)

	assert.Equal(t, "Deploy", blocks[0].Heading)
	require.Len(t, blocks[0].Steps, 3)
	assert.Equal(t, "Build the **image**", blocks[0].Steps[0].Text)
	assert.Equal(t, []string{"ok: continue", "failure: retry"}, blocks[0].Steps[1].Branches)

	assert.Equal(t, "Rollback", blocks[1].Heading)
	assert.Len(t, blocks[1].Steps, 2)
}

func TestExtract_SingleItemIgnored(t *testing.T) {
	assert.Empty(t, Extract("# A\n\n1. only one\n", 2))
	assert.Len(t, Extract("# A\n\n1. only one\n", 1), 1)
}

func TestExtract_BlankLineSplitsLists(t *testing.T) {
	blocks := Extract("1. a\n2. b\n\n1. c\n2. d\n", 2)
	assert.Len(t, blocks, 2)
}

func TestRender_SingleBlockHasNoSubgraph(t *testing.T) {
	out := Render(Extract("## Steps\n1. one\n2. two\n", 2))

	assert.Equal(t, "flowchart TD\n"+
		"    F0_0[\"one\"]\n"+
		"    F0_1[\"two\"]\n"+
		"    F0_0 --> F0_1\n", out)
}

func TestRender_ClustersAndBranches(t *testing.T) {
	out := Render(Extract(deployDoc, 2))

	assert.Contains(t, out, "    subgraph F0[\"Deploy\"]\n")
	assert.Contains(t, out, "    subgraph F1[\"Rollback\"]\n")
	assert.Contains(t, out, "        F0_0[\"Build the image\"]\n")
	assert.Contains(t, out, "        F0_1_b0{\"ok\"}\n")
	assert.Contains(t, out, "        F0_1 -.->|\"continue\"| F0_1_b0\n")
	assert.Contains(t, out, "        F0_1 --> F0_2\n")
	assert.Contains(t, out, "        F1_1[\"Restore 'previous' (tag)\"]\n")
	assert.Equal(t, 2, strings.Count(out, "\n    end\n"))
}

func TestRender_PlainSubBullet(t *testing.T) {
	out := Render(Extract("1. a\n   * note\n2. b\n", 2))
	assert.Contains(t, out, "    F0_0_b0[\"note\"]\n")
	assert.Contains(t, out, "    F0_0 -.-> F0_0_b0\n")
}

func TestRender_FullWidthColon(t *testing.T) {
	out := Render(Extract("1. a\n   - 成功：続行\n2. b\n", 2))
	assert.Contains(t, out, "F0_0_b0{\"成功\"}")
	assert.Contains(t, out, "-.->|\"続行\"|")
}

func TestGenerator_NoFlows(t *testing.T) {
	g := New()
	assert.Equal(t, domain.ArtifactFlow, g.Kind())

	out, err := g.Generate(context.Background(), &domain.ViewInput{Document: "# Plain\n\ntext\n"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGenerator_NilInput(t *testing.T) {
	_, err := New().Generate(context.Background(), nil)
	assert.Error(t, err)
}

func TestGenerator_MinItems(t *testing.T) {
	g := New(WithMinItems(3))
	out, err := g.Generate(context.Background(), &domain.ViewInput{Document: "1. a\n2. b\n"})
	require.NoError(t, err)
	assert.Empty(t, out)
}
