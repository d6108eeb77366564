// Package httpclient holds helpers shared by the gentleman based API clients.
package httpclient

import (
	"context"

	"gopkg.in/h2non/gentleman.v2"
)

// scoped cancels with ctx while values resolve from the request's own
// context first, where gentleman keeps its per request store.
type scoped struct {
	context.Context
	values context.Context
}

func (s scoped) Value(key any) any {
	if v := s.values.Value(key); v != nil {
		return v
	}
	return s.Context.Value(key)
}

// Bind ties req to ctx so that cancellation and deadlines abort the send.
func Bind(ctx context.Context, req *gentleman.Request) {
	orig := req.Context.Request
	req.Context.Request = orig.WithContext(scoped{Context: ctx, values: orig.Context()})
}
