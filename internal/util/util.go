// Package util contains small helpers shared by the relay packages.
package util

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// ErrorJSON formats an HTTP error body of the form {"message":"..."}.
func ErrorJSON(format string, args ...interface{}) []byte {
	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("message").String(fmt.Sprintf(format, args...))
	obj.End()
	return w.Bytes()
}
