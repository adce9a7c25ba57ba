package enhance

import (
	"errors"

	"github.com/dgallion1/notegest/internal/llm"
	"github.com/dgallion1/notegest/internal/section"
)

// ErrorKind groups pipeline failures by who has to act on them.
type ErrorKind string

const (
	KindNone      ErrorKind = ""
	KindStructure ErrorKind = "structure" // the source note
	KindSchema    ErrorKind = "schema"    // the model reply
	KindTransport ErrorKind = "transport" // the model server
	KindTimeout   ErrorKind = "timeout"
	KindInternal  ErrorKind = "internal"
)

// Classify returns the kind of a pipeline error.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var te *llm.TransportError
	switch {
	case section.IsStructure(err):
		return KindStructure
	case section.IsSchema(err):
		return KindSchema
	case errors.As(err, &te):
		if te.Timeout() {
			return KindTimeout
		}
		return KindTransport
	}
	return KindInternal
}
