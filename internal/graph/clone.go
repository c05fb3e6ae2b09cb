package graph

// CloneNode deep-copies a node and its subtree. Parent is left nil on the
// returned root; metadata values are shallow-copied (Vec2 and primitives
// are copy-safe; slices/maps stored as metadata are not deep cloned since
// the only mutable one in practice, styleOverrides, is replaced wholesale
// rather than mutated in place).
func CloneNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	cp := &Node{
		GUID:   n.GUID,
		HID:    n.HID,
		Type:   n.Type,
		X:      n.X,
		Y:      n.Y,
		Width:  n.Width,
		Height: n.Height,
		State:  n.State,
		Style:  cloneStyle(n.Style),
	}
	if n.Metadata != nil {
		cp.Metadata = make(map[string]any, len(n.Metadata))
		for k, v := range n.Metadata {
			cp.Metadata[k] = v
		}
	}
	for _, c := range n.Children {
		childCopy := CloneNode(c)
		childCopy.Parent = cp
		cp.Children = append(cp.Children, childCopy)
	}
	return cp
}

func cloneStyle(s Style) Style {
	cp := s
	if s.Badges != nil {
		cp.Badges = append([]string(nil), s.Badges...)
	}
	return cp
}

// CloneRoots deep-copies an ordered root list.
func CloneRoots(roots []*Node) []*Node {
	out := make([]*Node, len(roots))
	for i, r := range roots {
		out[i] = CloneNode(r)
	}
	return out
}

// CloneCanvasData deep-copies a full snapshot, including edges.
func CloneCanvasData(d *CanvasData) *CanvasData {
	if d == nil {
		return nil
	}
	cp := &CanvasData{
		Nodes:  CloneRoots(d.Nodes),
		Camera: d.Camera,
	}
	for _, e := range d.Edges {
		cp.Edges = append(cp.Edges, e.Clone())
	}
	for _, e := range d.OriginalEdges {
		cp.OriginalEdges = append(cp.OriginalEdges, e.Clone())
	}
	if d.Metadata != nil {
		cp.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			cp.Metadata[k] = v
		}
	}
	return cp
}
