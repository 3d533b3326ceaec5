package diagfmt

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type treeNode struct {
	label    string
	children []*treeNode
}

// treeBlock is a rendered subtree: lines padded to width display columns,
// root is the column its parent connects to.
type treeBlock struct {
	lines []string
	width int
	root  int
}

const treeGap = 3

// renderTree draws n above its children, which sit side by side. The label
// is centered over the outermost child connectors.
func renderTree(n *treeNode) treeBlock {
	labelWidth := runewidth.StringWidth(n.label)
	if len(n.children) == 0 {
		return treeBlock{lines: []string{n.label}, width: labelWidth, root: labelWidth / 2}
	}

	kids := make([]treeBlock, len(n.children))
	roots := make([]int, len(n.children))
	kidsWidth, height := 0, 0
	for i, child := range n.children {
		if i > 0 {
			kidsWidth += treeGap
		}
		kids[i] = renderTree(child)
		roots[i] = kidsWidth + kids[i].root
		kidsWidth += kids[i].width
		height = max(height, len(kids[i].lines))
	}

	// сдвиг детей вправо, если подпись шире их
	labelStart := (roots[0]+roots[len(roots)-1])/2 - labelWidth/2
	shift := 0
	if labelStart < 0 {
		shift, labelStart = -labelStart, 0
	}
	root := labelStart + labelWidth/2
	width := max(kidsWidth+shift, labelStart+labelWidth, root+1)

	connector := []byte(strings.Repeat(" ", width))
	for _, r := range roots {
		switch r += shift; {
		case r < root:
			connector[r] = '/'
		case r > root:
			connector[r] = '\\'
		}
	}
	connector[root] = '|'

	lines := make([]string, 0, height+2)
	lines = append(lines, padRight(strings.Repeat(" ", labelStart)+n.label, width), string(connector))
	for row := range height {
		var sb strings.Builder
		sb.WriteString(strings.Repeat(" ", shift))
		for i, kid := range kids {
			if i > 0 {
				sb.WriteString(strings.Repeat(" ", treeGap))
			}
			line := ""
			if row < len(kid.lines) {
				line = kid.lines[row]
			}
			sb.WriteString(padRight(line, kid.width))
		}
		lines = append(lines, padRight(sb.String(), width))
	}
	return treeBlock{lines: lines, width: width, root: root}
}

func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
