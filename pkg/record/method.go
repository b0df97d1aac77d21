package record

// Method is an HTTP request method.
type Method int

const (
	MethodUnknown Method = iota
	MethodGet
	MethodPut
	MethodPost
	MethodHead
	MethodDelete
	MethodPatch
	MethodCopy
	MethodConnect
	MethodTrace
	MethodOptions
)

var methodNames = [...]string{
	MethodUnknown: "UNKNOWN",
	MethodGet:     "GET",
	MethodPut:     "PUT",
	MethodPost:    "POST",
	MethodHead:    "HEAD",
	MethodDelete:  "DELETE",
	MethodPatch:   "PATCH",
	MethodCopy:    "COPY",
	MethodConnect: "CONNECT",
	MethodTrace:   "TRACE",
	MethodOptions: "OPTIONS",
}

// ParseMethod maps a request verb token to a Method. Matching is case
// sensitive; anything else yields MethodUnknown.
func ParseMethod(tok string) Method {
	for m, name := range methodNames {
		if m != int(MethodUnknown) && name == tok {
			return Method(m)
		}
	}
	return MethodUnknown
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return methodNames[MethodUnknown]
	}
	return methodNames[m]
}
