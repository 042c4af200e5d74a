package file

import (
	"mime"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// rangePattern accepts exactly one bytes range with either bound optional,
// matching RFC 7233's simple single-range form. Anything else is rejected
// outright rather than clamped.
var rangePattern = regexp.MustCompile(`^bytes=(\d*)-(\d*)$`)

// streamableTypes lists the content types for which Range headers are
// honored; media players need byte-serving to seek.
var streamableTypes = map[string]struct{}{
	"video/mp4":  {},
	"video/webm": {},
	"audio/mp3":  {},
	"audio/mpeg": {},
	"audio/ogg":  {},
	"audio/wav":  {},
	"audio/webm": {},
}

// byteRange is an inclusive span within a file.
type byteRange struct {
	start int64
	end   int64
}

func (r byteRange) length() int64 { return r.end - r.start + 1 }

// parseRange resolves a Range header against a file of the given size.
//
// A malformed header or a start at or past the end of the file yields
// ErrRangeNotSatisfiable. A well-formed end bound that overshoots the file is
// clamped instead: the client asked for "everything from start", which is
// servable.
func parseRange(header string, size int64) (byteRange, error) {
	m := rangePattern.FindStringSubmatch(header)
	if m == nil {
		return byteRange{}, ErrRangeNotSatisfiable
	}
	rawStart, rawEnd := m[1], m[2]
	if rawStart == "" && rawEnd == "" {
		return byteRange{}, ErrRangeNotSatisfiable
	}
	if size <= 0 {
		return byteRange{}, ErrRangeNotSatisfiable
	}

	if rawStart == "" {
		// Suffix form bytes=-N: the last N bytes.
		n, err := strconv.ParseInt(rawEnd, 10, 64)
		if err != nil || n == 0 {
			return byteRange{}, ErrRangeNotSatisfiable
		}
		start := size - n
		if start < 0 {
			start = 0
		}
		return byteRange{start: start, end: size - 1}, nil
	}

	start, err := strconv.ParseInt(rawStart, 10, 64)
	if err != nil {
		return byteRange{}, ErrRangeNotSatisfiable
	}
	if start >= size {
		return byteRange{}, ErrRangeNotSatisfiable
	}

	end := size - 1
	if rawEnd != "" {
		end, err = strconv.ParseInt(rawEnd, 10, 64)
		if err != nil {
			return byteRange{}, ErrRangeNotSatisfiable
		}
		if end >= size || end < start {
			end = size - 1
		}
	}

	return byteRange{start: start, end: end}, nil
}

// knownTypes pins the media extensions the service cares about. The stdlib
// table lacks several of them on minimal systems, and streamability detection
// must not depend on /etc/mime.types.
var knownTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".txt":  "text/plain; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
}

// contentTypeFor maps a filename's extension to a MIME type, defaulting to a
// generic binary type.
func contentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ctype, ok := knownTypes[ext]; ok {
		return ctype
	}
	if ctype := mime.TypeByExtension(ext); ctype != "" {
		return ctype
	}
	return "application/octet-stream"
}

// isStreamable reports whether Range requests are honored for the type.
// Parameters like charset are ignored.
func isStreamable(contentType string) bool {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	_, ok := streamableTypes[strings.TrimSpace(contentType)]
	return ok
}
