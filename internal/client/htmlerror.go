package client

import (
	"bytes"
	"mime"
	"strings"

	"golang.org/x/net/html"
)

// maxTitleLength bounds the page title copied into logs.
const maxTitleLength = 120

// htmlErrorTitle returns the <title> of an HTML error page, or "" when the
// response is not HTML. Reverse proxies in front of the service answer 502
// and 504 with such pages; the title is logged so the operator can tell a
// gateway failure from a service failure.
func htmlErrorTitle(contentType string, data []byte) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "text/html" {
		return ""
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.Join(strings.Fields(n.FirstChild.Data), " ")
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)

	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}
	return title
}
