package route

import (
	"strconv"
	"strings"

	"github.com/vango-dev/navguard/pkg/nav"
)

// node is a node in the route tree.
type node struct {
	// segment is the static path segment this node matches.
	segment string

	// paramName is the parameter name (without : or *).
	paramName string

	// paramType is the expected parameter type ("string" or "int").
	paramType string

	// record is the route registered at this node, if any.
	record *Record

	// children are static segment children.
	children []*node

	// param is the dynamic parameter child (:id).
	param *node

	// catchAll is the catch-all child (*slug).
	catchAll *node
}

func (n *node) findChild(segment string) *node {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

func (n *node) addChild(segment string) *node {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := &node{segment: segment}
	n.children = append(n.children, child)
	return child
}

// insert returns the node for pattern, creating nodes as needed.
// A parameter or catch-all slot is shared by every pattern that reaches it,
// so the first registration decides its name and type.
func (n *node) insert(pattern string) *node {
	current := n
	for _, seg := range nav.SplitPath(pattern) {
		switch {
		case strings.HasPrefix(seg, "*"):
			if current.catchAll == nil {
				current.catchAll = &node{paramName: seg[1:], paramType: "string"}
			}
			return current.catchAll
		case strings.HasPrefix(seg, ":"):
			name, typ := parseParamSegment(seg)
			if current.param == nil {
				current.param = &node{paramName: name, paramType: typ}
			}
			current = current.param
		default:
			current = current.addChild(seg)
		}
	}
	return current
}

// match walks segments, preferring static children, then parameters, then
// catch-alls, backtracking when a branch dead-ends.
func (n *node) match(segments []string, params map[string]string) *node {
	if len(segments) == 0 {
		if n.record != nil {
			return n
		}
		return nil
	}

	seg, rest := segments[0], segments[1:]

	if child := n.findChild(seg); child != nil {
		if found := child.match(rest, params); found != nil {
			return found
		}
	}

	if p := n.param; p != nil {
		if value, err := nav.DecodeSegment(seg, false); err == nil && p.accepts(value) {
			params[p.paramName] = value
			if found := p.match(rest, params); found != nil {
				return found
			}
			delete(params, p.paramName)
		}
	}

	if c := n.catchAll; c != nil && c.record != nil {
		value, err := nav.DecodeSegment(strings.Join(segments, "/"), true)
		if err == nil {
			params[c.paramName] = value
			return c
		}
	}

	return nil
}

func (n *node) accepts(value string) bool {
	if n.paramType == "int" {
		_, err := strconv.Atoi(value)
		return err == nil
	}
	return true
}

// parseParamSegment extracts name and type from a parameter segment.
// ":id" -> ("id", "string"), ":id:int" -> ("id", "int").
func parseParamSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, "string"
}
