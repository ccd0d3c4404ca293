package main

import (
	"fmt"
	"os"
	"strings"
)

// HeadingNode is one section of a markdown diary: the subtree under one
// heading. Children are keyed by heading text and keep source order.
// Built once per parse call and not mutated afterwards.
type HeadingNode struct {
	// Children maps heading text to the nested section one level deeper.
	Children map[string]*HeadingNode
	// ChildOrder lists Children keys in source order.
	ChildOrder []string
	// Content is the body text of the section, newlines preserved.
	Content string
	// SourceFile is the originating file identifier.
	SourceFile string
	// SourceOffset is the byte offset in the source just after the section's
	// subtree ends. Used for chronological tie-breaking between sections of
	// the same file.
	SourceOffset int
	// ImplicitWrapper is true on a root synthesized for a document without a
	// top-level heading, where level-2 headings became the root's children.
	ImplicitWrapper bool
}

func newHeadingNode() *HeadingNode {
	return &HeadingNode{Children: make(map[string]*HeadingNode)}
}

// addChild registers a child keeping insertion order. A repeated heading
// replaces the previous subtree like a map assignment would.
func (n *HeadingNode) addChild(name string, child *HeadingNode) {
	if _, ok := n.Children[name]; !ok {
		n.ChildOrder = append(n.ChildOrder, name)
	}
	n.Children[name] = child
}

// merge pulls another root's children and content into this node.
// Used when several diary files are digested together.
func (n *HeadingNode) merge(other *HeadingNode) {
	for _, name := range other.ChildOrder {
		n.addChild(name, other.Children[name])
	}
	n.Content += other.Content
}

// lineScanner walks lines of an in-memory file keeping byte offsets, with
// one-line pushback so a recursion level can leave an unconsumed heading for
// its caller.
type lineScanner struct {
	fileName string
	lines    []string // each line keeps its trailing newline
	starts   []int    // byte offset of each line
	index    int
}

func newLineScanner(content, fileName string) *lineScanner {
	sc := &lineScanner{fileName: fileName}
	offset := 0
	for len(content) > 0 {
		i := strings.IndexByte(content, '\n')
		var line string
		if i < 0 {
			line, content = content, ""
		} else {
			line, content = content[:i+1], content[i+1:]
		}
		sc.lines = append(sc.lines, line)
		sc.starts = append(sc.starts, offset)
		offset += len(line)
	}
	sc.starts = append(sc.starts, offset) // offset past the last line
	return sc
}

// next returns the next line with its start offset, or ok=false at EOF.
func (sc *lineScanner) next() (line string, start int, ok bool) {
	if sc.index >= len(sc.lines) {
		return "", sc.starts[len(sc.lines)], false
	}
	line, start = sc.lines[sc.index], sc.starts[sc.index]
	sc.index++
	return line, start, true
}

// pushBack restores the cursor to just before the last line returned by next.
func (sc *lineScanner) pushBack() {
	if sc.index > 0 {
		sc.index--
	}
}

// pos is the byte offset the next read would start at.
func (sc *lineScanner) pos() int {
	return sc.starts[sc.index]
}

// headingLevel counts leading '#' markers; 0 means body text.
func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	return level
}

// ParseMarkdown parses diary text into a heading tree. The returned root's
// children are the level-1 headings, or the level-2 headings when the
// document has no top-level heading (ImplicitWrapper is then set).
func ParseMarkdown(content, fileName string) (*HeadingNode, error) {
	sc := newLineScanner(content, fileName)
	return parseSections(sc, 1)
}

// ParseMarkdownFile reads and parses one diary file.
func ParseMarkdownFile(filePath string) (*HeadingNode, error) {
	buf, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseMarkdown(string(buf), filePath)
}

// parseSections reads lines collecting body text and opening a child for
// every heading at exactly the target level. A shallower heading is pushed
// back for the caller's loop; a heading deeper than target+1 is a structural
// error because a level was skipped.
func parseSections(sc *lineScanner, level int) (*HeadingNode, error) {
	node := newHeadingNode()
	var content strings.Builder

	for {
		linePos := sc.pos()
		line, _, ok := sc.next()
		if !ok {
			node.Content += content.String()
			return node, nil
		}

		hLevel := headingLevel(line)
		if hLevel == 0 {
			content.WriteString(line)
			continue
		}

		if content.Len() > 0 {
			node.Content += content.String()
			content.Reset()
		}

		// A document without a top-level heading: adopt level 2 as the
		// root's own target level and mark the synthesized wrapper.
		if level == 1 && hLevel == 2 {
			node.ImplicitWrapper = true
			level = 2
		}

		if hLevel < level {
			sc.pushBack()
			return node, nil
		}

		if hLevel > level {
			return nil, newStructuralError(
				levelJumpMessage(level, hLevel),
				sc.fileName,
				linePos,
				strings.TrimSpace(line),
				line,
			)
		}

		sectionName := strings.TrimSpace(line[hLevel:])
		child, err := parseSections(sc, hLevel+1)
		if err != nil {
			return nil, err
		}
		child.SourceOffset = sc.pos()
		child.SourceFile = sc.fileName
		node.addChild(sectionName, child)
	}
}

func levelJumpMessage(expected, actual int) string {
	return fmt.Sprintf(
		"invalid header level jump: expected level %d (%s), got level %d (%s)",
		expected, strings.Repeat("#", expected), actual, strings.Repeat("#", actual),
	)
}
