package entity

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Outcome is the decision Evaluate reaches for one request against one
// Entity.
type Outcome int

const (
	// OutcomeFullBody serves the entire file, status 200.
	OutcomeFullBody Outcome = iota
	// OutcomeNotModified serves an empty 304 response.
	OutcomeNotModified
	// OutcomePreconditionFailed serves a 412 with a short text body.
	OutcomePreconditionFailed
	// OutcomeRangeNotSatisfiable serves a 416 with Content-Range: */len.
	OutcomeRangeNotSatisfiable
	// OutcomeSingleRange serves one byte range, status 206.
	OutcomeSingleRange
	// OutcomeMultipart serves several byte ranges as multipart/byteranges,
	// status 206.
	OutcomeMultipart
)

// Decision is the result of evaluating a request's conditional and range
// headers against an Entity.
type Decision struct {
	Outcome  Outcome
	Ranges   []Span   // populated for OutcomeSingleRange and OutcomeMultipart
	Boundary string   // populated for OutcomeMultipart
}

// Evaluate applies the spec's fixed evaluation order to header against e:
// If-Match, If-None-Match, If-Modified-Since, If-Range, then Range.
func Evaluate(e *Entity, header http.Header) Decision {
	if ifMatch := header.Get("If-Match"); ifMatch != "" {
		if ifMatch != "*" && !matchesAnyStrong(ifMatch, e.ETag) {
			return Decision{Outcome: OutcomePreconditionFailed}
		}
	}

	if ifNoneMatch := header.Get("If-None-Match"); ifNoneMatch != "" {
		if ifNoneMatch == "*" || matchesAnyWeak(ifNoneMatch, e.ETag) {
			return Decision{Outcome: OutcomeNotModified}
		}
	}

	if ims := header.Get("If-Modified-Since"); ims != "" {
		if t, err := http.ParseTime(ims); err == nil {
			if !e.ModTime.Truncate(time.Second).After(t) {
				return Decision{Outcome: OutcomeNotModified}
			}
		}
	}

	rangeHeader := header.Get("Range")
	if rangeHeader == "" {
		return Decision{Outcome: OutcomeFullBody}
	}

	if ifRange := header.Get("If-Range"); ifRange != "" && !ifRangeSatisfied(ifRange, e) {
		// Demoted to a full-body request; the Range header is ignored.
		return Decision{Outcome: OutcomeFullBody}
	}

	spans := ParseRanges(rangeHeader, e.Length)
	switch len(spans) {
	case 0:
		return Decision{Outcome: OutcomeRangeNotSatisfiable}
	case 1:
		return Decision{Outcome: OutcomeSingleRange, Ranges: spans}
	default:
		return Decision{Outcome: OutcomeMultipart, Ranges: spans, Boundary: generateBoundary()}
	}
}

// ifRangeSatisfied reports whether the If-Range precondition still allows a
// ranged response: a strongly-matching ETag, or an HTTP-date no older than
// the entity's mtime.
func ifRangeSatisfied(value string, e *Entity) bool {
	if strings.HasPrefix(value, `"`) || strings.HasPrefix(value, `W/"`) {
		return matchesOneStrong(value, e.ETag)
	}
	t, err := http.ParseTime(value)
	if err != nil {
		return false
	}
	return !e.ModTime.Truncate(time.Second).After(t)
}

// matchesAnyStrong reports whether any tag in a comma-separated If-Match
// list matches etag under strong comparison (weak tags never match).
func matchesAnyStrong(list, etag string) bool {
	for _, tag := range splitTags(list) {
		if matchesOneStrong(tag, etag) {
			return true
		}
	}
	return false
}

func matchesOneStrong(tag, etag string) bool {
	return !strings.HasPrefix(tag, "W/") && tag == etag
}

// matchesAnyWeak reports whether any tag in a comma-separated
// If-None-Match list matches etag under weak comparison (the "W/" prefix,
// if present, is ignored on both sides).
func matchesAnyWeak(list, etag string) bool {
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range splitTags(list) {
		if strings.TrimPrefix(tag, "W/") == want {
			return true
		}
	}
	return false
}

func splitTags(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

const boundaryAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// generateBoundary returns a fresh 12-character alphanumeric
// multipart/byteranges boundary, drawing its entropy from a random UUID.
func generateBoundary() string {
	raw := uuid.New() // 16 bytes, 122 of their bits random (version 4)
	out := make([]byte, 12)
	for i := range out {
		out[i] = boundaryAlphabet[int(raw[i])%len(boundaryAlphabet)]
	}
	return string(out)
}
