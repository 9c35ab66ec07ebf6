package note

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Text limits used by listings and search results.
const (
	PreviewChars  = 200
	SubtitleChars = 50
	SnippetChars  = 150

	snippetBefore = 50
	snippetAfter  = 100
)

// slidesHeadingThreshold is the number of level-2 headings that marks a deck.
const slidesHeadingThreshold = 3

// checkboxPattern matches a markdown task-list item at the start of a line.
var checkboxPattern = regexp.MustCompile(`(?m)^[-*]\s+\[[xX ]\]`)

// headingLinePattern matches any ATX heading line.
var headingLinePattern = regexp.MustCompile(`(?m)^#.+$`)

var md = goldmark.New()

// headings walks the markdown tree of content and calls fn for each ATX
// ("#"-prefixed) heading with its level and raw inline text. Setext headings
// and headings inside code blocks are skipped. fn returns false to stop the walk.
func headings(content string, fn func(level int, title string) bool) {
	src := []byte(content)
	doc := md.Parser().Parse(text.NewReader(src))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if !isATX(src, h) {
			return ast.WalkSkipChildren, nil
		}
		var buf bytes.Buffer
		lines := h.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		if !fn(h.Level, strings.TrimSpace(buf.String())) {
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})
}

// isATX reports whether h was written with leading '#' markers rather than
// as a setext underline.
func isATX(src []byte, h *ast.Heading) bool {
	lines := h.Lines()
	if lines.Len() == 0 {
		// Only an ATX heading can be empty.
		return true
	}
	start := lines.At(0).Start
	lineStart := bytes.LastIndexByte(src[:start], '\n') + 1
	return bytes.HasPrefix(bytes.TrimLeft(src[lineStart:start], " "), []byte("#"))
}

// ExtractTitle returns the text of the first level-1 heading, or fallback.
func ExtractTitle(content, fallback string) string {
	title := ""
	headings(content, func(level int, t string) bool {
		if level == 1 && t != "" {
			title = t
			return false
		}
		return true
	})
	if title == "" {
		return fallback
	}
	return title
}

// InferKind classifies content: any checkbox item makes it a task list,
// three or more level-2 headings make it slides, anything else is a summary.
func InferKind(content string) Kind {
	if checkboxPattern.MatchString(content) {
		return KindTasks
	}
	h2 := 0
	headings(content, func(level int, _ string) bool {
		if level == 2 {
			h2++
		}
		return h2 < slidesHeadingThreshold
	})
	if h2 >= slidesHeadingThreshold {
		return KindSlides
	}
	return KindSummary
}

// Preview strips the first heading line and returns the leading characters
// of what remains.
func Preview(content string) string {
	if loc := headingLinePattern.FindStringIndex(content); loc != nil {
		content = content[:loc[0]] + content[loc[1]:]
	}
	return Truncate(strings.TrimSpace(content), PreviewChars)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ContainsFold reports whether query occurs in s, ignoring case.
func ContainsFold(s, query string) bool {
	return indexFold([]rune(s), []rune(query)) >= 0
}

// Snippet returns the search excerpt for content. A title hit yields the
// first SnippetChars characters; a content hit yields a window around the
// first occurrence wrapped in ellipses. ok is false when query is absent.
func Snippet(content, query string, titleHit bool) (string, bool) {
	if titleHit {
		return Truncate(content, SnippetChars), true
	}
	rc := []rune(content)
	idx := indexFold(rc, []rune(query))
	if idx < 0 {
		return "", false
	}
	start := max(0, idx-snippetBefore)
	end := min(len(rc), idx+snippetAfter)
	return "..." + string(rc[start:end]) + "...", true
}

// indexFold returns the rune index of the first case-insensitive occurrence
// of needle in hay, or -1.
func indexFold(hay, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j, r := range needle {
			if unicode.ToLower(hay[i+j]) != unicode.ToLower(r) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
