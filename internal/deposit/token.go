package deposit

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/zombor/palpa-deposit/internal/fault"
)

// CSRFTokenAttr is the <body> attribute holding the anti-forgery token
const CSRFTokenAttr = "data-essi-csrf-token"

// extractCSRFToken reads the lookup page and returns the token stored on
// its body element
func extractCSRFToken(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fault.Wrap(fault.ServiceProtocol, "parsing lookup page", err)
	}

	body := findElement(doc, atom.Body)
	if body == nil {
		return "", fault.New(fault.ServiceProtocol, "lookup page has no body element")
	}

	for _, attr := range body.Attr {
		if attr.Key == CSRFTokenAttr && attr.Val != "" {
			return attr.Val, nil
		}
	}
	return "", fault.New(fault.ServiceProtocol, "lookup page body has no "+CSRFTokenAttr+" attribute")
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
