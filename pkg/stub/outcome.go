package stub

// Outcome is the result of resolving a request against the catalog.
// The set of implementations is closed: Matched, Unauthorized and NotFound.
type Outcome interface {
	outcome()
}

// Matched carries the response selected for the request. Response is
// captured by value so later catalog edits cannot change what is rendered.
type Matched struct {
	Index    int
	ID       string
	Response Response
}

// Unauthorized means lifecycle Index matched but the request had no
// Authorization header.
type Unauthorized struct {
	Index int
	ID    string
}

// NotFound means no lifecycle matched.
type NotFound struct{}

func (Matched) outcome()      {}
func (Unauthorized) outcome() {}
func (NotFound) outcome()     {}
