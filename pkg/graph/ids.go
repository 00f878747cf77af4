package graph

import "strings"

const (
	nodePrefix    = "N-"
	anchorPrefix  = "A-"
	anchorNodeSep = "/"
)

// NodeKey canonicalises a node id to the "N-<id>" form. Already prefixed ids
// are returned unchanged.
func NodeKey(id string) string {
	if strings.HasPrefix(id, nodePrefix) {
		return id
	}
	return nodePrefix + id
}

// anchorLocalKey canonicalises an anchor id to the "A-<id>" form used inside
// a node's anchor store. A qualified "A-<id>/N-<node>" id is reduced to its
// local part.
func anchorLocalKey(id string) string {
	if i := strings.Index(id, anchorNodeSep); i >= 0 {
		id = id[:i]
	}
	if strings.HasPrefix(id, anchorPrefix) {
		return id
	}
	return anchorPrefix + id
}

// AnchorKey returns the graph-wide id of an anchor: "A-<id>/N-<node>".
func AnchorKey(anchorID, nodeID string) string {
	return anchorLocalKey(anchorID) + anchorNodeSep + NodeKey(nodeID)
}

// splitAnchorKey splits a graph-wide anchor id into its local key and node
// key. ok is false when the id is not qualified with a node.
func splitAnchorKey(id string) (local, node string, ok bool) {
	i := strings.Index(id, anchorNodeSep)
	if i < 0 {
		return "", "", false
	}
	return anchorLocalKey(id[:i]), NodeKey(id[i+1:]), true
}
