// Package sgf models Smart Game Format records and renders game states as
// SGF text.
package sgf

import (
	"sort"
	"strconv"
	"strings"

	"bugout/internal/domain"
)

// GameTree is a sequence of nodes plus variations.
type GameTree struct {
	Nodes    []Node
	Children []*GameTree
}

// Node holds SGF properties; a property may repeat, e.g. AB[aa][bb].
type Node struct {
	Properties map[string][]string
}

type SGF struct {
	Root *GameTree
}

// rootOrder fixes the order of well-known properties in the output.
var rootOrder = []string{"FF", "GM", "CA", "SZ", "PB", "PW", "DT", "RE", "KM", "RU", "C", "B", "W"}

func Serialize(s *SGF) string {
	var b strings.Builder
	b.WriteString("(")
	if s.Root != nil {
		writeTree(&b, s.Root)
	}
	b.WriteString(")")
	return b.String()
}

func writeTree(b *strings.Builder, tree *GameTree) {
	for _, node := range tree.Nodes {
		b.WriteString(";")
		used := make(map[string]bool, len(node.Properties))
		for _, key := range rootOrder {
			if values, ok := node.Properties[key]; ok {
				used[key] = true
				writeProperty(b, key, values)
			}
		}
		var rest []string
		for key := range node.Properties {
			if !used[key] {
				rest = append(rest, key)
			}
		}
		sort.Strings(rest)
		for _, key := range rest {
			writeProperty(b, key, node.Properties[key])
		}
	}
	for _, child := range tree.Children {
		b.WriteString("(")
		writeTree(b, child)
		b.WriteString(")")
	}
}

func writeProperty(b *strings.Builder, key string, values []string) {
	b.WriteString(key)
	for _, v := range values {
		b.WriteString("[")
		b.WriteString(escape(v))
		b.WriteString("]")
	}
}

func escape(v string) string {
	return strings.NewReplacer(`\`, `\\`, `]`, `\]`).Replace(v)
}

// Point renders a board point in SGF letters, column first.
func Point(c domain.Coord) string {
	return string([]byte{byte('a' + c.X), byte('a' + c.Y)})
}

// FromGameState builds the main line of a game. Passes become empty moves
// and a resignation ends the record with a result.
func FromGameState(state domain.GameState, black, white, date string) *SGF {
	root := Node{Properties: map[string][]string{
		"FF": {"4"},
		"GM": {"1"},
		"CA": {"UTF-8"},
		"SZ": {strconv.Itoa(state.Board.Size)},
	}}
	if black != "" {
		root.Properties["PB"] = []string{black}
	}
	if white != "" {
		root.Properties["PW"] = []string{white}
	}
	if date != "" {
		root.Properties["DT"] = []string{date}
	}

	tree := &GameTree{Nodes: []Node{root}}
	for _, m := range state.Moves {
		color := "B"
		if m.Player == domain.White {
			color = "W"
		}
		switch m.Coord.Kind {
		case domain.Resign:
			winner := "B"
			if m.Player == domain.Black {
				winner = "W"
			}
			root.Properties["RE"] = []string{winner + "+R"}
		case domain.Pass:
			tree.Nodes = append(tree.Nodes, Node{Properties: map[string][]string{color: {""}}})
		default:
			tree.Nodes = append(tree.Nodes, Node{Properties: map[string][]string{color: {Point(m.Coord.Point)}}})
		}
	}
	return &SGF{Root: tree}
}
