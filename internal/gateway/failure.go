package gateway

import "fmt"

type Kind string

const (
	// KindTransport covers failures before any response arrived: DNS, refused
	// connections, timeouts.
	KindTransport Kind = "transport"
	// KindRemote covers non-2xx responses from the backend.
	KindRemote Kind = "remote"
)

// Failure is the uniform error shape every gateway call produces. Detail is
// always populated with something readable.
type Failure struct {
	Kind   Kind
	Status int
	Detail string
}

func (f *Failure) Error() string {
	return f.Detail
}

func transportFailure(err error) *Failure {
	return &Failure{Kind: KindTransport, Detail: fmt.Sprintf("request failed: %v", err)}
}

func remoteFailure(status int, detail string) *Failure {
	if detail == "" {
		detail = fmt.Sprintf("request failed with status %d", status)
	}
	return &Failure{Kind: KindRemote, Status: status, Detail: detail}
}
