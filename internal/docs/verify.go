package docs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// PageInfo describes one verified HTML page.
type PageInfo struct {
	// Name is the filename relative to the doc tree root.
	Name  string
	Title string
}

// VerifyTree walks a generated documentation tree and checks that it is
// publishable: at least one HTML file exists, every HTML file parses, and
// every page carries a non-empty <title>. It returns the verified pages.
func VerifyTree(dir string) ([]PageInfo, error) {
	var pages []PageInfo
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		title, err := pageTitle(p)
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		if title == "" {
			return fmt.Errorf("%s: page has no title", rel)
		}
		pages = append(pages, PageInfo{Name: filepath.ToSlash(rel), Title: title})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("documentation tree %s contains no HTML pages", dir)
	}
	return pages, nil
}

// pageTitle parses one HTML file and extracts the text of its <title>.
func pageTitle(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	doc, err := html.Parse(f)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			title = strings.TrimSpace(sb.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title, nil
}
