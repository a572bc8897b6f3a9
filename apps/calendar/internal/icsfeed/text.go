package icsfeed

import (
	"strings"

	"golang.org/x/net/html"
)

// plainText strips the markup some providers put in DESCRIPTION. Block
// level elements and <br> become line breaks.
func plainText(value string) string {
	if !strings.Contains(value, "<") {
		return strings.TrimSpace(value)
	}

	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(value))

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return collapseBlankLines(sb.String())
		case html.TextToken:
			sb.Write(tokenizer.Text())
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "br", "p", "div", "li", "tr":
				sb.WriteByte('\n')
			}
		case html.CommentToken, html.DoctypeToken:
		}
	}
}

func collapseBlankLines(value string) string {
	lines := []string{}
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
