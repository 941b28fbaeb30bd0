package ekispert

import "fmt"

// DefaultNoRouteMessage is used when the provider returns no course and no error text.
const DefaultNoRouteMessage = "no route found (empty course list)"

// BestCourse returns the first candidate course. The search already asks for a
// single answer sorted by travel time, so no re-ranking happens here.
func (r *Response) BestCourse() (Course, bool) {
	if r == nil || len(r.ResultSet.Courses) == 0 {
		return Course{}, false
	}
	return r.ResultSet.Courses[0], true
}

// CourseCount reports how many candidates the provider returned.
func (r *Response) CourseCount() int {
	if r == nil {
		return 0
	}
	return len(r.ResultSet.Courses)
}

// ErrorMessage returns the provider's embedded error text, if any.
func (r *Response) ErrorMessage() string {
	if r == nil || r.ResultSet.Error == nil {
		return ""
	}
	return r.ResultSet.Error.Message
}

// NoRouteError reports a successful response that held no usable course.
type NoRouteError struct {
	Message    string
	RequestURL string
}

func (e *NoRouteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = DefaultNoRouteMessage
	}
	if e.RequestURL == "" {
		return msg
	}
	return fmt.Sprintf("%s | URL=%s", msg, e.RequestURL)
}
