package problems

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of one run.
type Kind string

const (
	AuthFailure       Kind = "auth-failure"
	ResolutionFailure Kind = "resolution-failure"
	RoutingMiss       Kind = "routing-miss"
	UploadFailure     Kind = "upload-failure"
	ReportFailure     Kind = "report-failure"
	SourceFailure     Kind = "source-failure"
	ConfigFailure     Kind = "config-failure"
	Internal          Kind = "internal"
)

// Fatal reports whether a failure of this kind ends the run on the fatal path.
// Routing misses, single-file upload failures and report failures are recorded only.
func (k Kind) Fatal() bool {
	switch k {
	case RoutingMiss, UploadFailure, ReportFailure:
		return false
	default:
		return true
	}
}

// Type builds the problem type identifier for a kind.
func Type(k Kind) string { return "urn:spupload:problem:" + string(k) }

// Error is a failure tagged with its kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Problem is the reportable form of an error, attached to a run result.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Step   string `json:"step,omitempty"`
}

var titles = map[Kind]string{
	AuthFailure:       "Access token could not be obtained",
	ResolutionFailure: "SharePoint site or drive not found",
	RoutingMiss:       "No routing rule matched the file",
	UploadFailure:     "File upload failed",
	ReportFailure:     "Report email could not be sent",
	SourceFailure:     "Source folder could not be read",
	ConfigFailure:     "Invalid configuration",
	Internal:          "Unexpected failure",
}

// From converts err into a Problem for step. Untyped errors are Internal.
func From(err error, step string) Problem {
	k, ok := KindOf(err)
	if !ok {
		k = Internal
	}
	return Problem{Type: Type(k), Title: titles[k], Detail: err.Error(), Step: step}
}
