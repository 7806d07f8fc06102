package crawler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zarif007/RepliKat/pkg/models"
)

func sampleTree() *models.RouteNode {
	return &models.RouteNode{
		Path: "/", URL: "https://example.com/", Status: 200, Outcome: models.OutcomeSuccess,
		Children: []*models.RouteNode{
			{
				Path: "/docs", URL: "https://example.com/docs", Status: 200, Outcome: models.OutcomeSuccess,
				Children: []*models.RouteNode{
					{Path: "/docs/api", URL: "https://example.com/docs/api", Status: 200, Outcome: models.OutcomeSuccess},
					{Path: "/docs/old", URL: "https://example.com/docs/old", Status: 404, Error: "HTTP 404", Outcome: models.OutcomeHTTPError},
				},
			},
			{Path: "/about", URL: "https://example.com/about", Error: models.MsgMaxDepth, Outcome: models.OutcomeSkippedDepth},
		},
	}
}

func TestRenderTreeConnectors(t *testing.T) {
	out := RenderTreeString(sampleTree())

	expected := strings.Join([]string{
		"/",
		"├── /about  [Max depth reached]",
		"└── /docs",
		"    ├── /docs/api",
		"    └── /docs/old  [404: HTTP 404]",
		"",
	}, "\n")
	assert.Equal(t, expected, out)
}

func TestRenderTreeSortsChildren(t *testing.T) {
	// Children arrive in completion order; rendering must not depend on it
	tree := &models.RouteNode{
		Path: "/", Outcome: models.OutcomeSuccess,
		Children: []*models.RouteNode{
			{Path: "/z", Outcome: models.OutcomeSuccess},
			{Path: "/a", Outcome: models.OutcomeSuccess},
			{Path: "/m", Outcome: models.OutcomeSuccess},
		},
	}

	lines := strings.Split(strings.TrimRight(RenderTreeString(tree), "\n"), "\n")
	assert.Equal(t, []string{"/", "├── /a", "├── /m", "└── /z"}, lines)
}

func TestRenderTreeNilRoot(t *testing.T) {
	var sb strings.Builder
	assert.NoError(t, RenderTree(&sb, nil))
	assert.Empty(t, sb.String())
}

func TestRenderRouteList(t *testing.T) {
	var sb strings.Builder
	assert.NoError(t, RenderRouteList(&sb, sampleTree()))

	assert.Equal(t, strings.Join([]string{
		"/",
		"/about",
		"/docs",
		"/docs/api",
		"/docs/old",
		"",
	}, "\n"), sb.String())
}

func TestRenderRouteListDeduplicatesPaths(t *testing.T) {
	tree := &models.RouteNode{
		Path: "/", Outcome: models.OutcomeSuccess,
		Children: []*models.RouteNode{
			{Path: "/shared", Outcome: models.OutcomeSuccess},
			{Path: "/shared", Outcome: models.OutcomeSkippedVisited},
		},
	}

	var sb strings.Builder
	assert.NoError(t, RenderRouteList(&sb, tree))
	assert.Equal(t, "/\n/shared\n", sb.String())
}
