package jira

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/runoshun/git-qa/internal/domain"
)

var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParserInstance
}

// edit replaces source[start:stop] with text.
type edit struct {
	text  string
	start int
	stop  int
}

// ToWiki converts the Markdown constructs of a pull request body to Jira wiki markup:
// inline links become [text|url], ATX headings become hN. without their closing
// sequence and fenced code blocks become {code:lang}...{code} (plaintext when no
// language is given). Fences nested in lists or blockquotes keep their container
// prefix. A "#" not followed by a space is not a heading and stays as is.
// Everything else is copied verbatim.
func ToWiki(markdown string) string {
	if markdown == "" {
		return ""
	}
	source := []byte(markdown)
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))

	var edits []edit
	seen := 0 // End of the last source segment visited
	_ = ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			e, stop := codeBlockEdits(node, source, seen)
			edits = append(edits, e...)
			seen = max(seen, stop)
			return ast.WalkSkipChildren, nil
		case *ast.Heading:
			edits = append(edits, headingEdits(node, source)...)
		case *ast.Link:
			if e, ok := linkEdit(node, source); ok {
				edits = append(edits, e)
				return ast.WalkSkipChildren, nil
			}
		case *ast.Text:
			seen = max(seen, node.Segment.Stop)
		}
		if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
			seen = max(seen, n.Lines().At(n.Lines().Len()-1).Stop)
		}
		return ast.WalkContinue, nil
	})

	slices.SortStableFunc(edits, func(a, b edit) int { return a.start - b.start })

	var out strings.Builder
	pos := 0
	for _, e := range edits {
		if e.start < pos {
			continue
		}
		out.Write(source[pos:e.start])
		out.WriteString(e.text)
		pos = e.stop
	}
	out.Write(source[pos:])
	return out.String()
}

func lineStart(source []byte, pos int) int {
	return bytes.LastIndexByte(source[:pos], '\n') + 1
}

func lineEnd(source []byte, pos int) int {
	if i := bytes.IndexByte(source[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(source)
}

// fenceMarker returns the offset of a code fence in line when only container
// markers (indentation, blockquote and list markers) precede it, or -1.
func fenceMarker(line []byte) int {
	for i := range line {
		if bytes.HasPrefix(line[i:], []byte("```")) || bytes.HasPrefix(line[i:], []byte("~~~")) {
			return i
		}
		if !strings.ContainsRune(" \t>-*+.)0123456789", rune(line[i])) {
			return -1
		}
	}
	return -1
}

// openingFence returns the start of the opening fence line of node.
// Blocks without content or info string are located by scanning from seen.
func openingFence(node *ast.FencedCodeBlock, source []byte, seen int) (int, bool) {
	switch {
	case node.Lines().Len() > 0:
		first := lineStart(source, node.Lines().At(0).Start)
		if first == 0 {
			return 0, false
		}
		return lineStart(source, first-1), true
	case node.Info != nil:
		return lineStart(source, node.Info.Segment.Start), true
	}
	for pos := lineStart(source, seen); pos < len(source); pos = lineEnd(source, pos) + 1 {
		if fenceMarker(source[pos:lineEnd(source, pos)]) >= 0 {
			return pos, true
		}
	}
	return 0, false
}

// codeBlockEdits replaces the fence markers of node, keeping the container prefix
// of each line. It also returns the end of the block in source.
func codeBlockEdits(node *ast.FencedCodeBlock, source []byte, seen int) ([]edit, int) {
	open, ok := openingFence(node, source, seen)
	if !ok {
		return nil, seen
	}
	openEnd := lineEnd(source, open)
	marker := fenceMarker(source[open:openEnd])
	if marker < 0 {
		return nil, seen
	}
	fence := source[open+marker]

	lang := string(node.Language(source))
	if lang == "" {
		lang = "plaintext"
	}
	edits := []edit{{start: open + marker, stop: openEnd, text: fmt.Sprintf("{code:%s}", lang)}}

	// The closing fence is on the line after the content, or right after the opening line.
	closing := openEnd + 1
	if lines := node.Lines(); lines.Len() > 0 {
		closing = lines.At(lines.Len() - 1).Stop
		if closing > 0 && source[closing-1] != '\n' {
			closing = lineEnd(source, closing) + 1
		}
	}
	if closing >= len(source) {
		tail := "\n{code}"
		if source[len(source)-1] == '\n' {
			tail = "{code}"
		}
		return append(edits, edit{start: len(source), stop: len(source), text: tail}), len(source)
	}
	closeEnd := lineEnd(source, closing)
	if m := fenceMarker(source[closing:closeEnd]); m >= 0 && source[closing+m] == fence {
		return append(edits, edit{start: closing + m, stop: closeEnd, text: "{code}"}), closeEnd
	}
	// Unclosed block ended by its container.
	return append(edits, edit{start: closing, stop: closing, text: "{code}\n"}), closing
}

// headingEdits turns the opening sequence of an ATX heading into hN. and drops
// its closing sequence. Setext headings are left as is.
func headingEdits(node *ast.Heading, source []byte) []edit {
	lines := node.Lines()
	if lines.Len() == 0 {
		return nil
	}
	contentStart := lines.At(0).Start
	hashesEnd := contentStart
	for hashesEnd > 0 && (source[hashesEnd-1] == ' ' || source[hashesEnd-1] == '\t') {
		hashesEnd--
	}
	hashes := hashesEnd
	for hashes > 0 && source[hashes-1] == '#' {
		hashes--
	}
	if hashes == hashesEnd {
		return nil
	}
	edits := []edit{{start: hashes, stop: hashesEnd, text: fmt.Sprintf("h%d.", node.Level)}}

	contentStop := lines.At(lines.Len() - 1).Stop
	end := lineEnd(source, contentStop)
	if rest := strings.Trim(string(source[contentStop:end]), " \t"); rest != "" && strings.Trim(rest, "#") == "" {
		cut := contentStop
		for cut > contentStart && (source[cut-1] == ' ' || source[cut-1] == '\t') {
			cut--
		}
		edits = append(edits, edit{start: cut, stop: end, text: ""})
	}
	return edits
}

func linkEdit(node *ast.Link, source []byte) (edit, bool) {
	textStart, textStop := -1, -1
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			if textStart < 0 || t.Segment.Start < textStart {
				textStart = t.Segment.Start
			}
			if t.Segment.Stop > textStop {
				textStop = t.Segment.Stop
			}
		}
		return ast.WalkContinue, nil
	})
	if textStart <= 0 {
		return edit{}, false
	}

	open := bytes.LastIndexByte(source[:textStart], '[')
	if open < 0 || strings.Trim(string(source[open+1:textStart]), "*_~`") != "" {
		return edit{}, false
	}
	rel := bytes.Index(source[textStop:], []byte("]("))
	if rel < 0 || strings.Trim(string(source[textStop:textStop+rel]), "*_~`") != "" {
		return edit{}, false
	}
	closeBracket := textStop + rel

	// Find the parenthesis closing the destination, allowing balanced pairs inside it.
	depth := 0
	end := -1
	for i := closeBracket + 2; i < len(source); i++ {
		if source[i] == '\n' {
			break
		}
		if source[i] == '(' {
			depth++
		} else if source[i] == ')' {
			if depth == 0 {
				end = i + 1
				break
			}
			depth--
		}
	}
	if end < 0 {
		return edit{}, false
	}

	label := string(source[open+1 : closeBracket])
	return edit{start: open, stop: end, text: "[" + label + "|" + string(node.Destination) + "]"}, true
}

// Description renders the issue description of a candidate: metadata lines,
// a blank line and the converted body.
func Description(c *domain.Candidate) string {
	var meta []string
	if c.IsPullRequest() {
		meta = append(meta, fmt.Sprintf("Pull request: [#%s|%s]", c.ID, c.URL))
	} else {
		meta = append(meta, fmt.Sprintf("Commit: [%s|%s]", c.ShortID(), c.URL))
	}
	if c.User != "" {
		meta = append(meta, fmt.Sprintf("Author: [%s|https://github.com/%s]", c.User, c.User))
	}
	if len(c.Labels) > 0 {
		labels := make([]string, 0, len(c.Labels))
		for _, l := range c.Labels {
			labels = append(labels, "{{"+l.Name+"}}")
		}
		meta = append(meta, "Labels: "+strings.Join(labels, ", "))
	}
	return strings.Join(meta, "\n") + "\n\n" + ToWiki(c.Body)
}
