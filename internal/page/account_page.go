// Package page parses the rendered HTML pages of the target service into
// typed records. Every structurally unexpected input maps to an explicit
// parse failure instead of a silent skip.
package page

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/mkrupp/filedrop-checker/internal/domain"
	"github.com/mkrupp/filedrop-checker/internal/infra/logging"
)

const fileRowCellCount = 4

// ParseAccountPage decodes a rendered account page into its file listing and
// user ID. File order matches document order. Rows with an unexpected cell
// count are logged and skipped; everything else malformed is a parse failure.
func ParseAccountPage(body []byte) (domain.AccountPage, error) {
	log := logging.GetLogger("page.account_page")

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return domain.AccountPage{}, fmt.Errorf("%w: %w", domain.ErrPageParse, err)
	}

	filesTable := findElementByClass(doc, "table", "files-table")
	if filesTable == nil {
		return domain.AccountPage{}, fmt.Errorf("%w: table.files-table not found", domain.ErrPageParse)
	}

	tbody := findElement(filesTable, "tbody")
	if tbody == nil {
		return domain.AccountPage{}, fmt.Errorf("%w: tbody not found in files table", domain.ErrPageParse)
	}

	var files []domain.FileRecord

	for _, row := range findElements(tbody, "tr") {
		cells := findElements(row, "td")

		switch {
		case len(cells) == 1 && hasClass(cells[0], "no-files"):
			// "(no files)" dummy entry
		case len(cells) == fileRowCellCount:
			file, err := parseFileRow(cells)
			if err != nil {
				return domain.AccountPage{}, err
			}

			files = append(files, file)
		default:
			log.Warn("unexpected number of cells in files table row", "cells", len(cells))
		}
	}

	userID, err := parseUserRecord(doc)
	if err != nil {
		return domain.AccountPage{}, err
	}

	return domain.AccountPage{Files: files, UserID: userID}, nil
}

func parseFileRow(cells []*html.Node) (domain.FileRecord, error) {
	idCell, nameCell, typeCell, sizeCell := cells[0], cells[1], cells[2], cells[3]

	fileID, err := strconv.ParseInt(strings.TrimSpace(textContent(idCell)), 10, 64)
	if err != nil {
		return domain.FileRecord{}, fmt.Errorf("%w: file id is not an integer: %w", domain.ErrPageParse, err)
	}

	link := findElement(nameCell, "a")
	if link == nil {
		return domain.FileRecord{}, fmt.Errorf("%w: download link missing in file row", domain.ErrPageParse)
	}

	if !strings.HasSuffix(attrValue(link, "href"), "?"+strconv.FormatInt(fileID, 10)) {
		return domain.FileRecord{}, fmt.Errorf(
			"%w: file id in download link not matching file id in table", domain.ErrPageParse)
	}

	fileSize, err := strconv.ParseInt(strings.TrimSpace(textContent(sizeCell)), 10, 64)
	if err != nil {
		return domain.FileRecord{}, fmt.Errorf("%w: file size is not an integer: %w", domain.ErrPageParse, err)
	}

	return domain.FileRecord{
		FileID:   fileID,
		FileName: textContent(link),
		FileType: textContent(typeCell),
		FileSize: fileSize,
	}, nil
}

func parseUserRecord(doc *html.Node) (int64, error) {
	userTable := findElementByClass(doc, "table", "user-record")
	if userTable == nil {
		return 0, fmt.Errorf("%w: table.user-record not found", domain.ErrPageParse)
	}

	for _, row := range findElements(userTable, "tr") {
		header := findElement(row, "th")
		value := findElement(row, "td")

		if header == nil || value == nil {
			continue
		}

		if strings.TrimSpace(strings.ToLower(textContent(header))) != "user id" {
			continue
		}

		userID, err := strconv.ParseInt(strings.TrimSpace(textContent(value)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: user id is not an integer: %w", domain.ErrPageParse, err)
		}

		return userID, nil
	}

	return 0, fmt.Errorf("%w: user id not found on account page", domain.ErrPageParse)
}

// findElement returns the first element with the given tag below n in
// document order, or nil.
func findElement(n *html.Node, tag string) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == tag {
			return child
		}

		if found := findElement(child, tag); found != nil {
			return found
		}
	}

	return nil
}

// findElements returns all elements with the given tag below n in document
// order. It does not descend into matching elements.
func findElements(n *html.Node, tag string) []*html.Node {
	var found []*html.Node

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == tag {
			found = append(found, child)

			continue
		}

		found = append(found, findElements(child, tag)...)
	}

	return found
}

func findElementByClass(n *html.Node, tag, class string) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == tag && hasClass(child, class) {
			return child
		}

		if found := findElementByClass(child, tag, class); found != nil {
			return found
		}
	}

	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, name := range strings.Fields(attrValue(n, "class")) {
		if name == class {
			return true
		}
	}

	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}

	return ""
}

func textContent(n *html.Node) string {
	var builder strings.Builder

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			builder.WriteString(node.Data)
		}

		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	return builder.String()
}
