package browse

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
)

const htmlPrologue = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Index</title></head>
<body>
<table>
<thead><tr><th></th><th>Name</th><th>Last modified</th><th>Size</th></tr></thead>
<tbody>
`

const htmlEpilogue = `</tbody>
</table>
</body>
</html>
`

const parentRow = `<tr><td>&#8617;</td><td><a href="../">../</a></td><td></td><td>-</td></tr>
`

func icon(t EntryType) string {
	switch t {
	case TypeDir:
		return "&#128193;"
	case TypeSymlink:
		return "&#128279;"
	case TypeFile:
		return "&#128196;"
	default:
		return "&#10067;"
	}
}

// row renders one table row for e. Directory names — including symlinks
// resolving to a directory — are percent-encoded and suffixed with a
// trailing slash, per §4.2. The icon still reflects e.Type (a
// directory-symlink keeps its link icon) since that's a sort/display
// category distinct from the resolved-is-dir href decision.
func row(e Entry) string {
	href := url.PathEscape(e.Name)
	label := e.Name
	if e.IsDir {
		href += "/"
		label += "/"
	}

	size := "-"
	if e.Type == TypeFile {
		size = humanize.IBytes(uint64(e.Size))
	}

	modified := ""
	if !e.ModTime.IsZero() {
		modified = e.ModTime.UTC().Format("2006-01-02 15:04:05")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<tr><td>%s</td><td><a href=\"%s\">%s</a></td><td>%s</td><td>%s</td></tr>\n",
		icon(e.Type), href, htmlEscape(label), modified, size)
	return b.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.String(s)
}

// Render writes a full directory listing to w: prologue, a parent row
// when depth > 0, then buffered and overflow entries in their already
// determined order, then the epilogue. Rows are written one at a time so
// callers streaming through a bounded body (see internal/responsebody)
// observe backpressure rather than buffering the whole listing.
func Render(w io.Writer, buffered, overflow []Entry, depth int) error {
	if _, err := io.WriteString(w, htmlPrologue); err != nil {
		return err
	}
	if depth > 0 {
		if _, err := io.WriteString(w, parentRow); err != nil {
			return err
		}
	}
	for _, e := range buffered {
		if _, err := io.WriteString(w, row(e)); err != nil {
			return err
		}
	}
	for _, e := range overflow {
		if _, err := io.WriteString(w, row(e)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, htmlEpilogue)
	return err
}
