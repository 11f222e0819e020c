package model

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ContentMatch represents a match state of a node type's content expression,
// and can be used to find out whether further content matches here, and
// whether a given position is a valid end of the node. These are computed
// once per schema, by compiling a content expression into a non-deterministic
// finite automaton and then turning that into a deterministic automaton via
// subset construction; each resulting state becomes a ContentMatch.
type ContentMatch struct {
	// True when this match state represents a valid end of the node.
	ValidEnd bool

	// Outgoing edges of the DFA state, ordered the way they were discovered
	// during subset construction (descending order of the lowest-numbered
	// NFA state reached through the edge). Several algorithms (DefaultType,
	// FillBefore, FindWrapping) depend on iterating these in this order.
	edges []contentEdge

	wrapCache []wrapCacheEntry
}

type contentEdge struct {
	typ  *NodeType
	next *ContentMatch
}

type wrapCacheEntry struct {
	target  *NodeType
	wrapped []*NodeType
}

// EmptyContentMatch is the match state of the empty content expression; it is
// the starting (and only) state for node types that allow no content.
var EmptyContentMatch = &ContentMatch{ValidEnd: true}

// MatchType matches a node type, returning the match state after that node
// when successful, nil otherwise.
func (cm *ContentMatch) MatchType(typ *NodeType) *ContentMatch {
	for _, e := range cm.edges {
		if e.typ == typ {
			return e.next
		}
	}
	return nil
}

// MatchFragment tries to match a fragment, returning the resulting match
// state when successful. start and end (both optional, defaulting to the
// whole fragment) restrict which children are considered.
func (cm *ContentMatch) MatchFragment(frag *Fragment, bounds ...int) *ContentMatch {
	start := 0
	end := frag.ChildCount()
	if len(bounds) > 0 {
		start = bounds[0]
	}
	if len(bounds) > 1 {
		end = bounds[1]
	}
	cur := cm
	for i := start; cur != nil && i < end; i++ {
		child, err := frag.Child(i)
		if err != nil {
			return nil
		}
		cur = cur.MatchType(child.Type)
	}
	return cur
}

func (cm *ContentMatch) inlineContent() bool {
	if len(cm.edges) == 0 {
		return false
	}
	return cm.edges[0].typ.IsInline()
}

// DefaultType returns the first type for which no required attributes are
// needed and which is not the text type, suitable as a default insertion
// candidate, or nil if there is none.
func (cm *ContentMatch) DefaultType() *NodeType {
	for _, e := range cm.edges {
		if !e.typ.IsText() && !e.typ.HasRequiredAttrs() {
			return e.typ
		}
	}
	return nil
}

func (cm *ContentMatch) compatible(other *ContentMatch) bool {
	for _, a := range cm.edges {
		for _, b := range other.edges {
			if a.typ == b.typ {
				return true
			}
		}
	}
	return false
}

// FillBefore tries to find a set of nodes, to be appended before the given
// fragment, that fill the content expression from this match, and (if toEnd
// is true) ends it. When successful, returns a Fragment of filler nodes (or
// the empty fragment if none are needed). Returns nil on failure.
func (cm *ContentMatch) FillBefore(after *Fragment, toEnd ...bool) *Fragment {
	end := false
	if len(toEnd) > 0 {
		end = toEnd[0]
	}
	return cm.fillBeforeFrom(after, end, 0)
}

func (cm *ContentMatch) fillBeforeFrom(after *Fragment, toEnd bool, startIndex int) *Fragment {
	seen := []*ContentMatch{cm}
	var search func(match *ContentMatch, types []*NodeType) *Fragment
	search = func(match *ContentMatch, types []*NodeType) *Fragment {
		finished := match.MatchFragment(after, startIndex)
		if finished != nil && (!toEnd || finished.ValidEnd) {
			nodes := make([]*Node, len(types))
			for i, tp := range types {
				n, err := tp.CreateAndFill()
				if err != nil || n == nil {
					return nil
				}
				nodes[i] = n
			}
			frag, err := FragmentFrom(nodes)
			if err != nil {
				return nil
			}
			return frag
		}
		for _, e := range match.edges {
			typ, next := e.typ, e.next
			if typ.IsText() || typ.HasRequiredAttrs() {
				continue
			}
			if containsMatch(seen, next) {
				continue
			}
			seen = append(seen, next)
			found := search(next, append(append([]*NodeType{}, types...), typ))
			if found != nil {
				return found
			}
		}
		return nil
	}
	return search(cm, nil)
}

func containsMatch(haystack []*ContentMatch, needle *ContentMatch) bool {
	for _, m := range haystack {
		if m == needle {
			return true
		}
	}
	return false
}

// FindWrapping finds a set of wrapping node types that would allow a node of
// the given type to appear at this match position. Returns nil if no such
// wrapping exists. A successful result with zero elements means target can
// be placed here directly, with no wrapping needed.
func (cm *ContentMatch) FindWrapping(target *NodeType) []*NodeType {
	for _, e := range cm.wrapCache {
		if e.target == target {
			return e.wrapped
		}
	}
	computed := cm.computeWrapping(target)
	cm.wrapCache = append(cm.wrapCache, wrapCacheEntry{target, computed})
	return computed
}

type wrapActive struct {
	match *ContentMatch
	typ   *NodeType
	via   *wrapActive
}

func (cm *ContentMatch) computeWrapping(target *NodeType) []*NodeType {
	seen := map[string]bool{}
	active := []*wrapActive{{match: cm}}
	for len(active) > 0 {
		current := active[0]
		active = active[1:]
		if current.match.MatchType(target) != nil {
			result := []*NodeType{}
			for obj := current; obj.typ != nil; obj = obj.via {
				result = append([]*NodeType{obj.typ}, result...)
			}
			return result
		}
		for _, e := range current.match.edges {
			typ := e.typ
			if typ.IsLeaf() || typ.HasRequiredAttrs() || seen[typ.Name] {
				continue
			}
			if current.typ != nil && !e.next.ValidEnd {
				continue
			}
			active = append(active, &wrapActive{match: typ.ContentMatch, typ: typ, via: current})
			seen[typ.Name] = true
		}
	}
	return nil
}

// EdgeCount returns the number of outgoing edges this state has.
func (cm *ContentMatch) EdgeCount() int {
	return len(cm.edges)
}

// Edge returns the nth outgoing edge (type, next-state pair) of this state.
func (cm *ContentMatch) Edge(n int) (*NodeType, *ContentMatch) {
	e := cm.edges[n]
	return e.typ, e.next
}

// ---- Content expression tokenizer, parser, and NFA/DFA compiler ----

// tokenPattern matches one content-expression token: a run of word
// characters, or a single character that is neither a word character nor
// whitespace.
var tokenPattern = regexp.MustCompile(`\w+|[^\s\w]`)

type tokenStream struct {
	source    string
	nodeTypes []*NodeType
	inline    *bool
	pos       int
	tokens    []string
}

func newTokenStream(source string, nodeTypes []*NodeType) *tokenStream {
	toks := tokenizeContentExpr(source)
	return &tokenStream{source: source, nodeTypes: nodeTypes, tokens: toks}
}

func tokenizeContentExpr(source string) []string {
	var out []string
	loc := tokenPattern.FindAllStringIndex(source, -1)
	for _, m := range loc {
		out = append(out, source[m[0]:m[1]])
	}
	var filtered []string
	for i, t := range out {
		if t == "" && i != 0 {
			continue
		}
		filtered = append(filtered, t)
	}
	if len(filtered) > 0 && filtered[0] == "" {
		filtered = filtered[1:]
	}
	if len(filtered) > 0 && filtered[len(filtered)-1] == "" {
		filtered = filtered[:len(filtered)-1]
	}
	return filtered
}

func (ts *tokenStream) next() string {
	if ts.pos >= len(ts.tokens) {
		return ""
	}
	return ts.tokens[ts.pos]
}

func (ts *tokenStream) hasNext() bool {
	return ts.pos < len(ts.tokens)
}

func (ts *tokenStream) eat(tok string) bool {
	if ts.hasNext() && ts.next() == tok {
		ts.pos++
		return true
	}
	return false
}

func (ts *tokenStream) err(msg string) error {
	return newSchemaSyntaxError("%s (in content expression '%s')", msg, ts.source)
}

// exprNode is a node in the parsed content-expression tree.
type exprNode struct {
	kind  string // "choice", "seq", "star", "plus", "opt", "range", "name"
	exprs []*exprNode
	expr  *exprNode
	min   int
	max   int
	value *NodeType
}

func parseExpr(ts *tokenStream) (*exprNode, error) {
	var exprs []*exprNode
	for {
		e, err := parseExprSeq(ts)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !ts.eat("|") {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &exprNode{kind: "choice", exprs: exprs}, nil
}

func parseExprSeq(ts *tokenStream) (*exprNode, error) {
	var exprs []*exprNode
	for {
		e, err := parseExprSubscript(ts)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !ts.hasNext() || ts.next() == ")" || ts.next() == "|" {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &exprNode{kind: "seq", exprs: exprs}, nil
}

func parseExprSubscript(ts *tokenStream) (*exprNode, error) {
	expr, err := parseExprAtom(ts)
	if err != nil {
		return nil, err
	}
	for {
		if ts.eat("+") {
			expr = &exprNode{kind: "plus", expr: expr}
		} else if ts.eat("*") {
			expr = &exprNode{kind: "star", expr: expr}
		} else if ts.eat("?") {
			expr = &exprNode{kind: "opt", expr: expr}
		} else if ts.eat("{") {
			expr, err = parseExprRange(ts, expr)
			if err != nil {
				return nil, err
			}
		} else {
			break
		}
	}
	return expr, nil
}

var numRe = regexp.MustCompile(`^\d+$`)

func parseNum(ts *tokenStream) (int, error) {
	if !numRe.MatchString(ts.next()) {
		return 0, ts.err("Expected number, got '" + ts.next() + "'")
	}
	n, _ := strconv.Atoi(ts.next())
	ts.pos++
	return n, nil
}

func parseExprRange(ts *tokenStream, expr *exprNode) (*exprNode, error) {
	min, err := parseNum(ts)
	if err != nil {
		return nil, err
	}
	max := min
	if ts.eat(",") {
		if ts.next() != "}" {
			max, err = parseNum(ts)
			if err != nil {
				return nil, err
			}
		} else {
			max = -1
		}
	}
	if !ts.eat("}") {
		return nil, ts.err("Unclosed braced range")
	}
	return &exprNode{kind: "range", min: min, max: max, expr: expr}, nil
}

var nonWordRe = regexp.MustCompile(`\W`)

func resolveName(ts *tokenStream, name string) ([]*NodeType, error) {
	for _, t := range ts.nodeTypes {
		if t.Name == name {
			return []*NodeType{t}, nil
		}
	}
	var result []*NodeType
	for _, t := range ts.nodeTypes {
		if hasGroup(t.Spec.Group, name) {
			result = append(result, t)
		}
	}
	if len(result) == 0 {
		return nil, ts.err("No node type or group '" + name + "' found")
	}
	return result, nil
}

func parseExprAtom(ts *tokenStream) (*exprNode, error) {
	if ts.eat("(") {
		expr, err := parseExpr(ts)
		if err != nil {
			return nil, err
		}
		if !ts.eat(")") {
			return nil, ts.err("Missing closing paren")
		}
		return expr, nil
	}
	if !nonWordRe.MatchString(ts.next()) {
		types, err := resolveName(ts, ts.next())
		if err != nil {
			return nil, err
		}
		var exprs []*exprNode
		for _, typ := range types {
			inline := typ.IsInline()
			if ts.inline == nil {
				ts.inline = &inline
			} else if *ts.inline != inline {
				return nil, ts.err("Mixing inline and block content")
			}
			exprs = append(exprs, &exprNode{kind: "name", value: typ})
		}
		ts.pos++
		if len(exprs) == 1 {
			return exprs[0], nil
		}
		return &exprNode{kind: "choice", exprs: exprs}, nil
	}
	return nil, ts.err("Unexpected token '" + ts.next() + "'")
}

// ---- NFA construction ----

type nfaEdge struct {
	term *NodeType // nil means epsilon
	to   int
}

type nfaBuilder struct {
	states [][]*nfaEdge
}

func (b *nfaBuilder) node() int {
	b.states = append(b.states, nil)
	return len(b.states) - 1
}

func (b *nfaBuilder) edge(from, to int, term *NodeType) *nfaEdge {
	e := &nfaEdge{term: term, to: to}
	b.states[from] = append(b.states[from], e)
	return e
}

func connect(edges []*nfaEdge, to int) {
	for _, e := range edges {
		e.to = to
	}
}

func (b *nfaBuilder) compile(expr *exprNode, from int) []*nfaEdge {
	switch expr.kind {
	case "choice":
		var out []*nfaEdge
		for _, e := range expr.exprs {
			out = append(out, b.compile(e, from)...)
		}
		return out
	case "seq":
		cur := from
		var next []*nfaEdge
		for i, e := range expr.exprs {
			next = b.compile(e, cur)
			if i == len(expr.exprs)-1 {
				return next
			}
			cur = b.node()
			connect(next, cur)
		}
		return next
	case "star":
		loop := b.node()
		b.edge(from, loop, nil)
		connect(b.compile(expr.expr, loop), loop)
		return []*nfaEdge{b.edge(loop, -1, nil)}
	case "plus":
		loop := b.node()
		connect(b.compile(expr.expr, from), loop)
		connect(b.compile(expr.expr, loop), loop)
		return []*nfaEdge{b.edge(loop, -1, nil)}
	case "opt":
		out := []*nfaEdge{b.edge(from, -1, nil)}
		return append(out, b.compile(expr.expr, from)...)
	case "range":
		cur := from
		for i := 0; i < expr.min; i++ {
			next := b.node()
			connect(b.compile(expr.expr, cur), next)
			cur = next
		}
		if expr.max == -1 {
			connect(b.compile(expr.expr, cur), cur)
		} else {
			for i := expr.min; i < expr.max; i++ {
				next := b.node()
				b.edge(cur, next, nil)
				connect(b.compile(expr.expr, cur), next)
				cur = next
			}
		}
		return []*nfaEdge{b.edge(cur, -1, nil)}
	case "name":
		return []*nfaEdge{b.edge(from, -1, expr.value)}
	}
	panic("unknown expr kind " + expr.kind)
}

func buildNFA(expr *exprNode) [][]nfaEdge {
	b := &nfaBuilder{states: [][]*nfaEdge{nil}}
	out := b.compile(expr, 0)
	connect(out, b.node())
	states := make([][]nfaEdge, len(b.states))
	for i, edges := range b.states {
		for _, e := range edges {
			states[i] = append(states[i], *e)
		}
	}
	return states
}

func cmpDesc(a, b int) int { return b - a }

// nullFrom returns, sorted in descending order, the set of NFA states
// reachable from node via epsilon edges. A state whose only outgoing edge is
// a lone epsilon edge is not itself included (its target is explored
// instead); this prunes trivial chains from the resulting DFA states.
func nullFrom(nfa [][]nfaEdge, node int) []int {
	var result []int
	seen := map[int]bool{}
	var scan func(n int)
	scan = func(n int) {
		edges := nfa[n]
		if len(edges) == 1 && edges[0].term == nil {
			scan(edges[0].to)
			return
		}
		result = append(result, n)
		for _, e := range edges {
			if e.term == nil && !seen[e.to] {
				seen[e.to] = true
				scan(e.to)
			}
		}
	}
	seen[node] = true
	scan(node)
	sort.Slice(result, func(i, j int) bool { return cmpDesc(result[i], result[j]) < 0 })
	return result
}

func stateSetKey(states []int) string {
	strs := make([]string, len(states))
	for i, s := range states {
		strs[i] = strconv.Itoa(s)
	}
	return strings.Join(strs, ",")
}

// buildDFA runs subset construction over the NFA, producing the ContentMatch
// graph. Each DFA state is keyed by its serialized set of NFA states during
// construction only; at runtime states are compared by pointer identity.
func buildDFA(nfa [][]nfaEdge) *ContentMatch {
	labeled := map[string]*ContentMatch{}
	final := len(nfa) - 1

	var explore func(states []int) *ContentMatch
	explore = func(states []int) *ContentMatch {
		type group struct {
			term *NodeType
			set  []int
		}
		var out []*group
		for _, node := range states {
			for _, e := range nfa[node] {
				if e.term == nil {
					continue
				}
				var g *group
				for _, cand := range out {
					if cand.term == e.term {
						g = cand
						break
					}
				}
				for _, reached := range nullFrom(nfa, e.to) {
					if g == nil {
						g = &group{term: e.term}
						out = append(out, g)
					}
					found := false
					for _, s := range g.set {
						if s == reached {
							found = true
							break
						}
					}
					if !found {
						g.set = append(g.set, reached)
					}
				}
			}
		}
		validEnd := false
		for _, s := range states {
			if s == final {
				validEnd = true
				break
			}
		}
		key := stateSetKey(states)
		state := &ContentMatch{ValidEnd: validEnd}
		labeled[key] = state
		for _, g := range out {
			sort.Slice(g.set, func(i, j int) bool { return cmpDesc(g.set[i], g.set[j]) < 0 })
			nextKey := stateSetKey(g.set)
			next, ok := labeled[nextKey]
			if !ok {
				next = explore(g.set)
			}
			state.edges = append(state.edges, contentEdge{typ: g.term, next: next})
		}
		return state
	}

	return explore(nullFrom(nfa, 0))
}

// checkForDeadEnds walks the DFA breadth-first, raising a SchemaSyntaxError if
// any reachable state is a dead end: not a valid end, with every outgoing
// edge leading only to text types or types with required (no-default)
// attributes. Such a state can never reach acceptance.
func checkForDeadEnds(match *ContentMatch, ts *tokenStream) error {
	work := []*ContentMatch{match}
	seen := map[*ContentMatch]bool{match: true}
	for i := 0; i < len(work); i++ {
		state := work[i]
		dead := !state.ValidEnd
		var names []string
		for _, e := range state.edges {
			names = append(names, e.typ.Name)
			if dead && !(e.typ.IsText() || e.typ.HasRequiredAttrs()) {
				dead = false
			}
			if !seen[e.next] {
				seen[e.next] = true
				work = append(work, e.next)
			}
		}
		if dead {
			return ts.err("Only non-generatable nodes (" + strings.Join(names, ", ") + ") in a required position")
		}
	}
	return nil
}

// ParseContentMatch compiles a content expression string into its starting
// ContentMatch (DFA state), resolving bare names against the given ordered
// list of node types (and their groups).
func ParseContentMatch(expr string, nodeTypes []*NodeType) (*ContentMatch, error) {
	ts := newTokenStream(expr, nodeTypes)
	if !ts.hasNext() {
		return EmptyContentMatch, nil
	}
	parsed, err := parseExpr(ts)
	if err != nil {
		return nil, err
	}
	if ts.hasNext() {
		return nil, ts.err("Unexpected trailing text")
	}
	match := buildDFA(buildNFA(parsed))
	if err := checkForDeadEnds(match, ts); err != nil {
		return nil, err
	}
	return match, nil
}
