// Package gateway abstracts the backend transport. A call that completes
// with an application-level rejection (4xx/5xx) returns OK=false and no
// error; only true transport failure returns an error. Callers use that
// split to tell "rejected" from "could not be attempted".
package gateway

import "context"

type Request struct {
	Method string
	Body   any
}

type Response struct {
	OK     bool
	Status int
	// Data is the decoded JSON body when the payload parses as JSON, else
	// the raw text.
	Data any
}

type Gateway interface {
	Send(ctx context.Context, path string, req Request) (Response, error)
}
