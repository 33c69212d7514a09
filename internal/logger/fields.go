package logger

import (
	"log/slog"
	"time"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// HTTP Request
	// ========================================================================
	KeyRequestID = "request_id" // Request ID assigned by the router middleware
	KeyMethod    = "method"     // HTTP method
	KeyRoute     = "route"      // Request path
	KeyStatus    = "status"     // HTTP response status code
	KeyBytes     = "bytes"      // Response body size in bytes

	// ========================================================================
	// Client Identification
	// ========================================================================
	KeyClientIP = "client_ip" // Client IP address (forwarded-header aware)
	KeyUsername = "username"  // Authenticated subject

	// ========================================================================
	// Auth
	// ========================================================================
	KeyTokenType = "token_type" // Token type: access, refresh
	KeyTokenID   = "jti"        // JWT ID claim

	// ========================================================================
	// Metadata & Files
	// ========================================================================
	KeyFolderID   = "folder_id"   // Folder identifier
	KeyParentID   = "parent_id"   // Parent folder identifier
	KeyFolderName = "folder_name" // Folder display name
	KeyFilename   = "filename"    // File name (unique across the store)
	KeySize       = "size"        // File size in bytes
	KeyCount      = "count"       // Entry count in a listing or table

	// ========================================================================
	// Rate Limiting
	// ========================================================================
	KeyRouteClass = "route_class" // Admission class: auth, upload, static

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyBackend    = "backend"     // Persistence backend: badger, memory
	KeyPath       = "path"        // Filesystem or storage path
	KeyPort       = "port"        // Listening port
	KeyVersion    = "version"     // Build version
)

// ============================================================================
// Field constructors for type safety
// These functions provide type-safe construction of slog.Attr values.
// ============================================================================

// RequestID returns a slog.Attr for the router-assigned request ID
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Method returns a slog.Attr for the HTTP method
func Method(m string) slog.Attr {
	return slog.String(KeyMethod, m)
}

// Route returns a slog.Attr for the request path
func Route(path string) slog.Attr {
	return slog.String(KeyRoute, path)
}

// Status returns a slog.Attr for the HTTP response status code
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// Bytes returns a slog.Attr for the response body size
func Bytes(n int) slog.Attr {
	return slog.Int(KeyBytes, n)
}

// ClientIP returns a slog.Attr for the client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// Username returns a slog.Attr for the authenticated subject
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// TokenType returns a slog.Attr for the token type (access, refresh)
func TokenType(t string) slog.Attr {
	return slog.String(KeyTokenType, t)
}

// TokenID returns a slog.Attr for the JWT ID claim
func TokenID(jti string) slog.Attr {
	return slog.String(KeyTokenID, jti)
}

// FolderID returns a slog.Attr for a folder identifier
func FolderID(id string) slog.Attr {
	return slog.String(KeyFolderID, id)
}

// ParentID returns a slog.Attr for a parent folder identifier.
// An empty string denotes the root.
func ParentID(id string) slog.Attr {
	return slog.String(KeyParentID, id)
}

// FolderName returns a slog.Attr for a folder display name
func FolderName(name string) slog.Attr {
	return slog.String(KeyFolderName, name)
}

// Filename returns a slog.Attr for a file name
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// Size returns a slog.Attr for a file size in bytes
func Size(s int64) slog.Attr {
	return slog.Int64(KeySize, s)
}

// Count returns a slog.Attr for an entry count
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// RouteClass returns a slog.Attr for an admission route class
func RouteClass(class string) slog.Attr {
	return slog.String(KeyRouteClass, class)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMs, float64(d.Microseconds())/1000.0)
}

// Err returns a slog.Attr for an error message.
// Safe to call with nil error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Backend returns a slog.Attr for a persistence backend name
func Backend(name string) slog.Attr {
	return slog.String(KeyBackend, name)
}

// Path returns a slog.Attr for a filesystem or storage path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Port returns a slog.Attr for a listening port
func Port(p int) slog.Attr {
	return slog.Int(KeyPort, p)
}

// Version returns a slog.Attr for a build version
func Version(v string) slog.Attr {
	return slog.String(KeyVersion, v)
}
