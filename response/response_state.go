package response

type responseState int

const (
	stateStatusLine responseState = iota
	stateHeaders
	stateBody
	stateDone
)

func newResponseState() responseState {
	return stateStatusLine
}

func (rs responseState) String() string {
	switch rs {
	case stateStatusLine:
		return "status line"
	case stateHeaders:
		return "headers"
	case stateBody:
		return "body"
	default:
		return "done"
	}
}

// advance moves to the next part of the message; done is terminal.
func (rs responseState) advance() responseState {
	if rs == stateDone {
		return stateDone
	}
	return rs + 1
}
