package app

// Access is the outcome of an ownership check.
type Access int

const (
	Authorized Access = iota
	NotFound
	Forbidden
)

func (a Access) String() string {
	switch a {
	case Authorized:
		return "authorized"
	case NotFound:
		return "not found"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Guard decides whether callerID may touch a row owned by ownerID.
func Guard(callerID int64, found bool, ownerID int64) Access {
	if !found {
		return NotFound
	}
	if ownerID != callerID {
		return Forbidden
	}
	return Authorized
}

// authorize turns a Guard outcome into the API error for noun, or nil.
func authorize(callerID int64, found bool, ownerID int64, verb, noun string) error {
	switch Guard(callerID, found, ownerID) {
	case NotFound:
		return notFound(noun)
	case Forbidden:
		return forbidden(verb, noun)
	}
	return nil
}
