// Package scrape downloads site pages and reduces them to visible text.
package scrape

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"iga-community/internal/pkg/pdfextract"
)

const defaultMaxBytes = 8 << 20

// Page is the text content of one fetched URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

func NewFetcher(httpClient *http.Client, userAgent string) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		maxBytes:   defaultMaxBytes,
	}
}

// Fetch downloads url and extracts its text. PDFs go through pdfextract,
// everything else is parsed as HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request failed: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	if isPDF(resp.Header.Get("Content-Type"), url) {
		text, err := pdfextract.ExtractText(resp.Body, f.maxBytes)
		if err != nil {
			return nil, fmt.Errorf("extract pdf %s failed: %w", url, err)
		}
		return &Page{URL: url, Text: text}, nil
	}

	title, text, err := ExtractHTML(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("extract html %s failed: %w", url, err)
	}
	return &Page{URL: url, Title: title, Text: text}, nil
}

func isPDF(contentType, url string) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(url), ".pdf")
}

// ExtractHTML returns the document title and its visible text, one block
// element per line. Script, style, noscript, template and svg content is
// dropped.
func ExtractHTML(r io.Reader) (title, text string, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg, atom.Head:
				if n.DataAtom == atom.Head {
					title = findTitle(n)
				}
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.DataAtom) {
			b.WriteByte('\n')
		}
	}
	walk(doc)

	return title, normalize(b.String()), nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer, atom.Nav,
		atom.Main, atom.Aside, atom.Li, atom.Ul, atom.Ol, atom.Br, atom.Tr, atom.Table,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Pre,
		atom.Figcaption, atom.Dd, atom.Dt, atom.Form:
		return true
	}
	return false
}

// normalize collapses spaces inside lines and drops blank lines.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
