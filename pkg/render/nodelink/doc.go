// Package nodelink draws a graph with a spanning tree highlighted as a
// classic node-link diagram.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, res.Tree, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Styling
//
// The generated DOT is an undirected graph:
//
//   - Tree edges are solid and drawn bold
//   - Graph edges outside the tree are dashed grey (omitted with HideNonTree)
//   - Leaves are filled with a highlight colour
//   - The root is drawn as a double circle
//
// Tree edges carry full layout weight while non-tree edges are marked
// constraint=false, so Graphviz arranges the picture around the tree.
package nodelink
