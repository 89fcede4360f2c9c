package entity

import "strings"

// PartHeader renders the boundary line and per-part headers preceding one
// multipart/byteranges part payload, per §4.3.4: "--boundary\r\n" followed
// by Content-Type and Content-Range, each terminated by "\r\n", then a
// blank line before the payload.
func PartHeader(boundary, contentType string, span Span, length int64) string {
	var b strings.Builder
	b.WriteString("--")
	b.WriteString(boundary)
	b.WriteString("\r\n")
	b.WriteString("Content-Type: ")
	b.WriteString(contentType)
	b.WriteString("\r\n")
	b.WriteString("Content-Range: ")
	b.WriteString(span.ContentRange(length))
	b.WriteString("\r\n\r\n")
	return b.String()
}

// PartTrailer is appended after each part's payload, before the next
// part's boundary line (or the terminal boundary).
const PartTrailer = "\r\n"

// FinalBoundary terminates a multipart/byteranges body.
func FinalBoundary(boundary string) string {
	return "--" + boundary + "--"
}

// ContentType returns the Content-Type header value for a multipart
// byteranges response with a freshly generated boundary.
func ContentType(boundary string) string {
	return "multipart/byteranges; boundary=" + boundary
}
