package scorm

import (
	"errors"
	"strconv"
)

var (
	ErrSessionNotFound  = errors.New("scorm session not found")
	ErrNothingToResume  = errors.New("no saved position to resume")
	ErrSessionCompleted = errors.New("scorm session already completed")
	ErrUnknownAction    = errors.New("unknown session action")
	ErrInvalidLaunch    = errors.New("invalid launch request")
)

// Version is the runtime API generation a call was made through.
type Version int

const (
	Version2004 Version = iota
	Version12
)

func (v Version) String() string {
	if v == Version12 {
		return "1.2"
	}
	return "2004"
}

// apiError is a runtime failure independent of API generation; each
// generation maps it onto its own numeric code.
type apiError int

const (
	errNone apiError = iota
	errGeneral
	errAlreadyInitialized
	errInstanceTerminated
	errTerminateBeforeInit
	errTerminateAfterTerminate
	errGetBeforeInit
	errGetAfterTerminate
	errSetBeforeInit
	errSetAfterTerminate
	errCommitBeforeInit
	errCommitAfterTerminate
	errArgument
	errGetFailure
	errSetFailure
	errUndefinedElement
	errNotInitialized
	errReadOnly
	errWriteOnly
	errTypeMismatch
)

var codes2004 = map[apiError]int{
	errNone:                    0,
	errGeneral:                 101,
	errAlreadyInitialized:      103,
	errInstanceTerminated:      104,
	errTerminateBeforeInit:     112,
	errTerminateAfterTerminate: 113,
	errGetBeforeInit:           122,
	errGetAfterTerminate:       123,
	errSetBeforeInit:           132,
	errSetAfterTerminate:       133,
	errCommitBeforeInit:        142,
	errCommitAfterTerminate:    143,
	errArgument:                201,
	errGetFailure:              301,
	errSetFailure:              351,
	errUndefinedElement:        401,
	errNotInitialized:          403,
	errReadOnly:                404,
	errWriteOnly:               405,
	errTypeMismatch:            406,
}

// SCORM 1.2 has a much coarser table: lifecycle misuse is 101 or 301.
var codes12 = map[apiError]int{
	errNone:                    0,
	errGeneral:                 101,
	errAlreadyInitialized:      101,
	errInstanceTerminated:      101,
	errTerminateBeforeInit:     301,
	errTerminateAfterTerminate: 101,
	errGetBeforeInit:           301,
	errGetAfterTerminate:       101,
	errSetBeforeInit:           301,
	errSetAfterTerminate:       101,
	errCommitBeforeInit:        301,
	errCommitAfterTerminate:    101,
	errArgument:                201,
	errGetFailure:              201,
	errSetFailure:              201,
	errUndefinedElement:        401,
	errNotInitialized:          0,
	errReadOnly:                403,
	errWriteOnly:               404,
	errTypeMismatch:            405,
}

var messages2004 = map[int]string{
	0:   "No Error",
	101: "General Exception",
	103: "Already Initialized",
	104: "Content Instance Terminated",
	112: "Termination Before Initialization",
	113: "Termination After Termination",
	122: "Retrieve Data Before Initialization",
	123: "Retrieve Data After Termination",
	132: "Store Data Before Initialization",
	133: "Store Data After Termination",
	142: "Commit Before Initialization",
	143: "Commit After Termination",
	201: "General Argument Error",
	301: "General Get Failure",
	351: "General Set Failure",
	391: "General Commit Failure",
	401: "Undefined Data Model Element",
	403: "Data Model Element Value Not Initialized",
	404: "Data Model Element Is Read Only",
	405: "Data Model Element Is Write Only",
	406: "Data Model Element Type Mismatch",
}

var messages12 = map[int]string{
	0:   "No error",
	101: "General exception",
	201: "Invalid argument error",
	202: "Element cannot have children",
	203: "Element not an array. Cannot have count",
	301: "Not initialized",
	401: "Not implemented error",
	402: "Invalid set value, element is a keyword",
	403: "Element is read only",
	404: "Element is write only",
	405: "Incorrect data type",
}

func (e apiError) code(v Version) int {
	if v == Version12 {
		return codes12[e]
	}
	return codes2004[e]
}

// errorString returns the runtime's message for a numeric code given as a
// string, or "" for codes the generation does not define.
func errorString(v Version, code string) string {
	n, err := strconv.Atoi(code)
	if err != nil {
		return ""
	}
	if v == Version12 {
		return messages12[n]
	}
	return messages2004[n]
}
