package ratelimit

import "strings"

// Class selects which admission rule applies to a request path.
type Class string

const (
	// ClassAuth covers login, refresh and other credential endpoints
	ClassAuth Class = "auth"

	// ClassUpload covers upload and general API traffic
	ClassUpload Class = "upload"

	// ClassStatic covers reads of already-uploaded content
	ClassStatic Class = "static"
)

// Classify maps a request path to its route class.
//
// The bypass list wins over everything: a path matching a disabled prefix
// returns limited=false and is not throttled at all. Otherwise stored
// content reads are static, upload paths are upload, anything mentioning
// auth or login is auth, and everything else defaults to upload.
func (l *Limiter) Classify(path string) (class Class, limited bool) {
	for _, prefix := range l.disabled {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return "", false
		}
	}

	switch {
	case strings.HasPrefix(path, "/uploads"):
		return ClassStatic, true
	case strings.HasPrefix(path, "/upload"):
		return ClassUpload, true
	case strings.Contains(path, "login"), strings.Contains(path, "auth"):
		return ClassAuth, true
	default:
		return ClassUpload, true
	}
}
