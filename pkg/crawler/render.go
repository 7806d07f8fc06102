package crawler

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/zarif007/RepliKat/pkg/models"
)

const (
	indentPrefix    = "    "
	entryPrefix     = "├── "
	lastEntryPrefix = "└── "
	verticalLine    = "│   "
)

// RenderTree writes a text-based route tree to w, one node per line with
// box-drawing connectors. Children print sorted by path so the output is
// stable regardless of the order branches finished in.
func RenderTree(w io.Writer, root *models.RouteNode) error {
	if root == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s%s\n", root.Path, annotate(root)); err != nil {
		return err
	}
	return renderChildren(w, root, "")
}

func renderChildren(w io.Writer, node *models.RouteNode, currentIndent string) error {
	children := sortedChildren(node)
	for i, child := range children {
		isLast := i == len(children)-1

		connector := entryPrefix
		if isLast {
			connector = lastEntryPrefix
		}

		if _, err := fmt.Fprintf(w, "%s%s%s%s\n", currentIndent, connector, child.Path, annotate(child)); err != nil {
			return err
		}

		nextIndent := currentIndent
		if isLast {
			nextIndent += indentPrefix
		} else {
			nextIndent += verticalLine
		}
		if err := renderChildren(w, child, nextIndent); err != nil {
			return err
		}
	}
	return nil
}

// annotate builds the status suffix shown next to a path. Clean pages print
// bare; everything else carries its failure or skip reason.
func annotate(node *models.RouteNode) string {
	switch {
	case node.Error != "" && node.Status != 0:
		return fmt.Sprintf("  [%d: %s]", node.Status, node.Error)
	case node.Error != "":
		return fmt.Sprintf("  [%s]", node.Error)
	default:
		return ""
	}
}

func sortedChildren(node *models.RouteNode) []*models.RouteNode {
	children := make([]*models.RouteNode, len(node.Children))
	copy(children, node.Children)
	sort.Slice(children, func(i, j int) bool {
		return children[i].Path < children[j].Path
	})
	return children
}

// RenderRouteList writes the flat sorted list of distinct route paths in the
// tree, one per line. Skip placeholders and failed fetches are included; the
// structure they occupy is part of the map.
func RenderRouteList(w io.Writer, root *models.RouteNode) error {
	seen := make(map[string]struct{})
	var paths []string
	root.Walk(func(n *models.RouteNode) {
		if _, ok := seen[n.Path]; !ok {
			seen[n.Path] = struct{}{}
			paths = append(paths, n.Path)
		}
	})
	sort.Strings(paths)

	for _, p := range paths {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}

// RenderTreeString is a convenience wrapper over RenderTree for callers that
// want the tree as a string (log output, MCP tool results).
func RenderTreeString(root *models.RouteNode) string {
	var sb strings.Builder
	_ = RenderTree(&sb, root)
	return sb.String()
}
