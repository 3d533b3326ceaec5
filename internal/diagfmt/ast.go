package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tensa/internal/ast"
	"tensa/internal/source"
	"tensa/internal/types"
)

// ASTNodeOutput is the JSON shape of one syntax tree node.
type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Kind     string          `json:"kind,omitempty"`
	Span     source.Span     `json:"span"`
	Text     string          `json:"text,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
	Fields   map[string]any  `json:"fields,omitempty"`
}

// FormatASTPretty prints prog as an indented outline.
func FormatASTPretty(w io.Writer, prog *ast.Program, fs *source.FileSet) error {
	if prog == nil {
		return fmt.Errorf("nil program")
	}
	root := buildProgramNode(prog)
	if _, err := fmt.Fprintf(w, "%s (span: %s)\n", programHeader(prog, fs), formatSpan(prog.Span, fs)); err != nil {
		return err
	}
	for i, st := range root.Children {
		isLast := i == len(root.Children)-1
		branch, prefix := "├─ ", "│  "
		if isLast {
			branch, prefix = "└─ ", "   "
		}
		if err := writeOutline(w, st, fs, branch, prefix); err != nil {
			return err
		}
	}
	return nil
}

func writeOutline(w io.Writer, node ASTNodeOutput, fs *source.FileSet, branch, prefix string) error {
	if _, err := fmt.Fprintf(w, "%s%s (span: %s)\n", branch, outlineLabel(node), formatSpan(node.Span, fs)); err != nil {
		return err
	}
	for i, child := range node.Children {
		if i == len(node.Children)-1 {
			if err := writeOutline(w, child, fs, prefix+"└─ ", prefix+"   "); err != nil {
				return err
			}
			continue
		}
		if err := writeOutline(w, child, fs, prefix+"├─ ", prefix+"│  "); err != nil {
			return err
		}
	}
	return nil
}

func outlineLabel(node ASTNodeOutput) string {
	label := node.Type
	if node.Kind != "" {
		label += "[" + node.Kind + "]"
	}
	if node.Text != "" {
		label += ": " + node.Text
	}
	return label
}

// FormatASTTree draws prog as a top-down ASCII tree.
func FormatASTTree(w io.Writer, prog *ast.Program, fs *source.FileSet) error {
	if prog == nil {
		return fmt.Errorf("nil program")
	}
	root := toTreeNode(buildProgramNode(prog))
	root.label = programHeader(prog, fs)
	block := renderTree(root)
	for _, line := range block.lines {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func toTreeNode(node ASTNodeOutput) *treeNode {
	tn := &treeNode{label: outlineLabel(node)}
	for _, child := range node.Children {
		tn.children = append(tn.children, toTreeNode(child))
	}
	return tn
}

// FormatASTJSON writes prog as indented JSON.
func FormatASTJSON(w io.Writer, prog *ast.Program) error {
	if prog == nil {
		return fmt.Errorf("nil program")
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildASTJSON(prog))
}

// BuildASTJSON returns the JSON tree of prog for callers that embed it in a
// larger document.
func BuildASTJSON(prog *ast.Program) ASTNodeOutput {
	return buildProgramNode(prog)
}

func programHeader(prog *ast.Program, fs *source.FileSet) string {
	if fs != nil {
		if f := fs.Get(prog.Span.File); f != nil {
			return "Program " + f.FormatPath("auto", fs.BaseDir())
		}
	}
	return "Program"
}

func buildProgramNode(prog *ast.Program) ASTNodeOutput {
	root := ASTNodeOutput{Type: "Program", Span: prog.Span}
	for i, st := range prog.Stmts {
		root.Children = append(root.Children, buildStmtNode(st, i))
	}
	return root
}

func buildStmtNode(st source.Spanned[ast.Stmt], idx int) ASTNodeOutput {
	node := ASTNodeOutput{Type: fmt.Sprintf("Stmt[%d]", idx), Span: st.Span}
	switch s := st.Value.(type) {
	case *ast.ExprStmt:
		node.Kind = "Expr"
		node.Children = []ASTNodeOutput{buildExprNode(s.X)}
	case *ast.AssignStmt:
		node.Kind = "Assign"
		node.Text = s.LHS.Value
		node.Fields = map[string]any{"name": s.LHS.Value, "name_span": s.LHS.Span}
		node.Children = []ASTNodeOutput{buildExprNode(s.RHS)}
	default:
		node.Kind = fmt.Sprintf("%T", st.Value)
	}
	return node
}

func buildExprNode(e source.Spanned[ast.Expr]) ASTNodeOutput {
	node := ASTNodeOutput{Type: "Expr", Span: e.Span}
	switch x := e.Value.(type) {
	case *ast.FillTensor:
		node.Kind = "Fill"
		dims := x.Dims()
		node.Text = fmt.Sprintf("%s; %d; %s", formatDims(dims), x.Fill.Value, types.ShortName(x.ResolvedDType()))
		node.Fields = map[string]any{
			"fill":     x.Fill.Value,
			"shape":    []int(dims),
			"dtype":    x.ResolvedDType().String(),
			"explicit": x.DataType != nil,
		}
	case *ast.RangeTensor:
		node.Kind = "Range"
		node.Text = fmt.Sprintf("%d..%d", x.Start.Value, x.Stop.Value)
		node.Fields = map[string]any{"start": x.Start.Value, "stop": x.Stop.Value}
		if x.Step != nil {
			node.Text += "; " + strconv.FormatInt(int64(x.Step.Value), 10)
			node.Fields["step"] = x.Step.Value
		}
	case *ast.Variable:
		node.Kind = "Variable"
		node.Text = x.Name
	case *ast.Binary:
		node.Kind = "Binary"
		node.Text = x.Op.Value.Token()
		node.Fields = map[string]any{"op": x.Op.Value.String(), "op_span": x.Op.Span}
		node.Children = []ASTNodeOutput{buildExprNode(x.LHS), buildExprNode(x.RHS)}
	default:
		node.Kind = fmt.Sprintf("%T", e.Value)
	}
	return node
}

func formatDims(dims types.Shape) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, " x ")
}

// formatSpan resolves span to "line:col-line:col" when fs knows the file.
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs != nil && fs.Get(span.File) != nil {
		start, end := fs.Resolve(span)
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}
