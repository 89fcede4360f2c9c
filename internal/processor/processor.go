// Package processor orchestrates one request: resolve the path, stat it,
// branch between a directory listing and a file entity, and spawn the
// body producer, per §4.8.
package processor

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/caddyserver/webdir"
	"github.com/caddyserver/webdir/internal/browse"
	"github.com/caddyserver/webdir/internal/chunkedfile"
	"github.com/caddyserver/webdir/internal/entity"
	"github.com/caddyserver/webdir/internal/httperr"
	"github.com/caddyserver/webdir/internal/pathresolver"
	"github.com/caddyserver/webdir/internal/responsebody"
)

// Response is the synchronous result of Process: a status, headers, and
// (for body-bearing outcomes other than HEAD) a streaming body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       *responsebody.Body
}

// Processor binds an immutable WebDir configuration to request handling.
type Processor struct {
	wd *webdir.WebDir
}

func New(wd *webdir.WebDir) *Processor {
	return &Processor{wd: wd}
}

// Process implements the full §4.8 algorithm.
func (p *Processor) Process(ctx context.Context, method, rawPath string, header http.Header) (*Response, error) {
	if method != http.MethodGet && method != http.MethodHead {
		return nil, httperr.New(httperr.KindBadMethod, nil).WithHeader("Allow", "GET, HEAD")
	}

	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		decoded = rawPath
	}

	res := pathresolver.Canonicalize(p.wd.Root(), decoded)

	info, err := os.Stat(res.Absolute)
	if err != nil {
		return nil, httperr.FromStatErr(err)
	}

	if info.IsDir() {
		if p.wd.Index() {
			indexPath := filepath.Join(res.Absolute, "index.html")
			if indexInfo, err := os.Stat(indexPath); err == nil && indexInfo.Mode().IsRegular() {
				return p.serveFile(ctx, method, indexPath, indexInfo, header)
			}
		}
		return p.serveDirectory(ctx, method, res.Absolute, res.Depth, header)
	}

	if !info.Mode().IsRegular() {
		return nil, httperr.New(httperr.KindNotFound, nil)
	}

	return p.serveFile(ctx, method, res.Absolute, info, header)
}

func (p *Processor) serveDirectory(ctx context.Context, method, dirPath string, depth int, header http.Header) (*Response, error) {
	buffered, overflow, err := browse.Load(ctx, dirPath)
	if err != nil {
		return nil, httperr.FromStatErr(err)
	}

	respHeader := http.Header{}
	respHeader.Set("Content-Type", "text/html; charset=utf-8")

	if method == http.MethodHead {
		return &Response{StatusCode: 200, Header: respHeader}, nil
	}

	sender, body := responsebody.Channel(responsebody.DefaultCapacity, -1)
	go func() {
		defer sender.Close()
		pw := &senderWriter{sender: sender}
		_ = browse.Render(pw, buffered, overflow, depth)
	}()

	return &Response{StatusCode: 200, Header: respHeader, Body: body}, nil
}

// senderWriter adapts a responsebody.Sender to io.Writer so browse.Render
// can stream rows through it without knowing about channels.
type senderWriter struct {
	sender *responsebody.Sender
}

func (w *senderWriter) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)
	if err := w.sender.Send(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (p *Processor) serveFile(ctx context.Context, method string, path string, info os.FileInfo, header http.Header) (*Response, error) {
	e := entity.New(path, info)
	decision := entity.Evaluate(e, header)

	respHeader := commonHeaders(e)

	switch decision.Outcome {
	case entity.OutcomeNotModified:
		return &Response{StatusCode: 304, Header: respHeader}, nil

	case entity.OutcomePreconditionFailed:
		resp := errorResponse(respHeader, 412, "precondition failed")
		if method == http.MethodHead {
			resp.Body = nil
		}
		return resp, nil

	case entity.OutcomeRangeNotSatisfiable:
		respHeader.Set("Content-Range", "bytes */"+itoa(e.Length))
		resp := errorResponse(respHeader, 416, "range not satisfiable")
		if method == http.MethodHead {
			resp.Body = nil
		}
		return resp, nil

	case entity.OutcomeFullBody:
		respHeader.Set("Content-Length", itoa(e.Length))
		if method == http.MethodHead {
			return &Response{StatusCode: 200, Header: respHeader}, nil
		}
		sender, body := responsebody.Channel(responsebody.DefaultCapacity, e.Length)
		go produceFullBody(sender, path, e.Length)
		return &Response{StatusCode: 200, Header: respHeader, Body: body}, nil

	case entity.OutcomeSingleRange:
		span := decision.Ranges[0]
		respHeader.Set("Content-Length", itoa(span.Len()))
		respHeader.Set("Content-Range", span.ContentRange(e.Length))
		if method == http.MethodHead {
			return &Response{StatusCode: 206, Header: respHeader}, nil
		}
		sender, body := responsebody.Channel(responsebody.DefaultCapacity, span.Len())
		go produceRange(sender, path, span)
		return &Response{StatusCode: 206, Header: respHeader, Body: body}, nil

	case entity.OutcomeMultipart:
		respHeader.Set("Content-Type", entity.ContentType(decision.Boundary))
		if method == http.MethodHead {
			return &Response{StatusCode: 206, Header: respHeader}, nil
		}
		sender, body := responsebody.Channel(responsebody.DefaultCapacity, -1)
		go produceMultipart(sender, path, e, decision)
		return &Response{StatusCode: 206, Header: respHeader, Body: body}, nil

	default:
		return nil, httperr.New(httperr.KindOther, nil)
	}
}

func commonHeaders(e *entity.Entity) http.Header {
	h := http.Header{}
	h.Set("Accept-Ranges", "bytes")
	h.Set("ETag", e.ETag)
	h.Set("Content-Type", e.ContentType)
	if !e.ModTime.IsZero() {
		h.Set("Last-Modified", e.ModTime.UTC().Format(http.TimeFormat))
	}
	return h
}

func errorResponse(h http.Header, status int, text string) *Response {
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Content-Length", itoa(int64(len(text))))
	return &Response{StatusCode: status, Header: h, Body: responsebody.One([]byte(text))}
}

func produceFullBody(sender *responsebody.Sender, path string, length int64) {
	defer sender.Close()
	cf, err := chunkedfile.Open(path)
	if err != nil {
		return
	}
	defer cf.Close()

	for {
		chunk, err := cf.NextChunk()
		if err != nil || chunk == nil {
			return
		}
		if sender.Send(cloneChunk(chunk)) != nil {
			return
		}
	}
}

func produceRange(sender *responsebody.Sender, path string, span entity.Span) {
	defer sender.Close()
	cf, err := chunkedfile.Open(path)
	if err != nil {
		return
	}
	defer cf.Close()

	if err := cf.Seek(span.Start); err != nil {
		return
	}

	lf := chunkedfile.NewLimitedFile(cf, span.Len())
	for {
		chunk, err := lf.NextChunk()
		if err != nil || chunk == nil {
			return
		}
		if sender.Send(cloneChunk(chunk)) != nil {
			return
		}
	}
}

func produceMultipart(sender *responsebody.Sender, path string, e *entity.Entity, decision entity.Decision) {
	defer sender.Close()

	for _, span := range decision.Ranges {
		header := entity.PartHeader(decision.Boundary, e.ContentType, span, e.Length)
		if sender.Send([]byte(header)) != nil {
			return
		}

		cf, err := chunkedfile.Open(path)
		if err != nil {
			return
		}
		if err := cf.Seek(span.Start); err != nil {
			cf.Close()
			return
		}

		lf := chunkedfile.NewLimitedFile(cf, span.Len())
		for {
			chunk, err := lf.NextChunk()
			if err != nil || chunk == nil {
				break
			}
			if sender.Send(cloneChunk(chunk)) != nil {
				cf.Close()
				return
			}
		}
		cf.Close()

		if sender.Send([]byte(entity.PartTrailer)) != nil {
			return
		}
	}

	sender.Send([]byte(entity.FinalBoundary(decision.Boundary)))
}

// cloneChunk copies a chunk out of ChunkedFile's reused internal buffer
// before it is handed to the bounded ResponseBody channel, since frames
// may sit queued while the producer reads the next chunk into the same
// backing array.
func cloneChunk(chunk []byte) []byte {
	out := make([]byte, len(chunk))
	copy(out, chunk)
	return out
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
