// Package graphwalk holds iterative traversals over adjacency maps keyed by
// person id. None of them recurse, so deep or cyclic input cannot blow the stack.
package graphwalk

type state uint8

const (
	unvisited state = iota
	onPath
	done
)

// Depths assigns every id in order a depth of base for nodes without parents
// and 1 + max(depth(parent)) otherwise. Parent edges that close a cycle are
// ignored. Ids in pinned keep their pinned depth and their own parents are not
// consulted.
func Depths(order []string, parentsOf map[string][]string, base int, pinned map[string]int) map[string]int {
	depth := make(map[string]int, len(order))
	st := make(map[string]state, len(order))

	type frame struct {
		id   string
		next int
	}

	for _, start := range order {
		if st[start] != unvisited {
			continue
		}
		st[start] = onPath
		stack := []frame{{id: start}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]

			if d, ok := pinned[top.id]; ok {
				depth[top.id] = d
				st[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}

			parents := parentsOf[top.id]
			if top.next < len(parents) {
				p := parents[top.next]
				top.next++
				if st[p] == unvisited {
					st[p] = onPath
					stack = append(stack, frame{id: p})
				}
				continue
			}

			d := base
			for _, p := range parents {
				if st[p] == done && depth[p]+1 > d {
					d = depth[p] + 1
				}
			}
			depth[top.id] = d
			st[top.id] = done
			stack = stack[:len(stack)-1]
		}
	}
	return depth
}

// ReachesCycle walks next from start and reports whether some node is met
// again while it is still on the current path. A node reached twice through
// separate paths is not a cycle.
func ReachesCycle(start string, next map[string][]string) bool {
	st := map[string]state{start: onPath}

	type frame struct {
		id string
		i  int
	}
	stack := []frame{{id: start}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		out := next[top.id]
		if top.i < len(out) {
			n := out[top.i]
			top.i++
			switch st[n] {
			case onPath:
				return true
			case unvisited:
				st[n] = onPath
				stack = append(stack, frame{id: n})
			}
			continue
		}
		st[top.id] = done
		stack = stack[:len(stack)-1]
	}
	return false
}

// Levels runs a breadth-first walk from start along next, stopping after
// maxDepth levels. It returns the reached ids (start excluded) in discovery
// order together with the level each was first reached at.
func Levels(start string, next map[string][]string, maxDepth int) ([]string, map[string]int) {
	level := map[string]int{start: 0}
	var order []string
	current := []string{start}

	for depth := 0; depth < maxDepth && len(current) > 0; depth++ {
		var upcoming []string
		for _, id := range current {
			for _, n := range next[id] {
				if _, seen := level[n]; seen {
					continue
				}
				level[n] = depth + 1
				order = append(order, n)
				upcoming = append(upcoming, n)
			}
		}
		current = upcoming
	}

	delete(level, start)
	return order, level
}
