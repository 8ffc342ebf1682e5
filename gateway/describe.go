package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// User-facing messages for gateway failures.
const (
	MessageUnexpected  = "An unexpected error occurred"
	MessageNoDocuments = "Please upload documents first before asking questions."
)

// noDocumentsDetail is the detail fragment older backends send instead of
// CodeNoDocuments. Kept until every backend sends the code.
const noDocumentsDetail = "No documents found"

// Describe maps err onto the text shown to the user.
//
//   - nil: ""
//   - server failure: the detail verbatim, else the status text, else
//     "Request failed with status N"; a missing-index failure is rewritten
//     to MessageNoDocuments
//   - anything else (transport, decode, non-gateway errors): MessageUnexpected
func Describe(err error) string {
	if err == nil {
		return ""
	}
	gwErr, ok := AsError(err)
	if !ok || !errors.Is(gwErr, ErrServer) {
		return MessageUnexpected
	}
	if isNoDocuments(gwErr) {
		return MessageNoDocuments
	}
	switch {
	case gwErr.Detail != "":
		return gwErr.Detail
	case gwErr.StatusText != "":
		return gwErr.StatusText
	default:
		return fmt.Sprintf("Request failed with status %d", gwErr.Status)
	}
}

// DescribeOr returns Describe(err) when the backend explained the failure
// (a detail or a structured code), and fallback otherwise.
func DescribeOr(err error, fallback string) string {
	gwErr, ok := AsError(err)
	if !ok || !errors.Is(gwErr, ErrServer) {
		return fallback
	}
	if gwErr.Detail == "" && gwErr.Code == "" {
		return fallback
	}
	return Describe(err)
}

func isNoDocuments(e *Error) bool {
	if e.Code == CodeNoDocuments {
		return true
	}
	return e.Status == 500 && strings.Contains(e.Detail, noDocumentsDetail)
}
