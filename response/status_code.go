package response

// StatusCode is the closed set of statuses this server emits.
type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusCreated             StatusCode = 201
	StatusNotFound            StatusCode = 404
	StatusInternalServerError StatusCode = 500
)

var reasonPhrases = map[StatusCode]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusNotFound:            "Not Found",
	StatusInternalServerError: "Internal Server Error",
}

// GetStatusReason returns the reason phrase for the given status code.
func GetStatusReason(s StatusCode) string {
	return reasonPhrases[s]
}

// Valid reports whether s belongs to the supported set.
func (s StatusCode) Valid() bool {
	_, ok := reasonPhrases[s]
	return ok
}
