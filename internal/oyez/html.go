package oyez

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText flattens an Oyez HTML fragment into plain text. Block elements
// become paragraph breaks and runs of whitespace collapse to one space.
func HTMLToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	var (
		paragraphs []string
		current    strings.Builder
	)
	flush := func() {
		if p := strings.Join(strings.Fields(current.String()), " "); p != "" {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
	}

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			flush()
			return strings.Join(paragraphs, "\n\n")
		case html.TextToken:
			current.Write(z.Text())
			current.WriteByte(' ')
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if isBlock(string(name)) {
				flush()
			}
		}
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "ul", "ol", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}
