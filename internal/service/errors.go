package service

import "errors"

// Error kinds. Every error returned by the services unwraps to exactly one of these.
var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrConflict            = errors.New("conflict")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// PublicMessage returns the message of the first domain error in err's chain,
// or "" when there is none. Wrapped causes are not included.
func PublicMessage(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return ""
}

// Domain errors.
var (
	ErrClassNotFound      = newKindError(ErrNotFound, "class not found")
	ErrLectureNotFound    = newKindError(ErrNotFound, "lecture not found")
	ErrAttendanceNotFound = newKindError(ErrNotFound, "attendance not marked for this lecture")
	ErrGradeNotFound      = newKindError(ErrNotFound, "grade not found")
	ErrStudentNotFound    = newKindError(ErrNotFound, "student not found")

	ErrPrincipalRequired = newKindError(ErrUnauthorized, "acting user id is required")
	ErrLecturerInvalid   = newKindError(ErrUnauthorized, "lecturer invalid")
	ErrNotClassOwner     = newKindError(ErrUnauthorized, "only the owning lecturer may modify this class")
	ErrNotSelf           = newKindError(ErrUnauthorized, "students may only access their own attendance")
	ErrForeignLecturer   = newKindError(ErrUnauthorized, "lecturers may only list their own classes")

	ErrNameRequired            = newKindError(ErrValidation, "name is required")
	ErrTitleRequired           = newKindError(ErrValidation, "title is required")
	ErrInvalidDate             = newKindError(ErrValidation, "dates must use the YYYY-MM-DD format")
	ErrInvalidDateRange        = newKindError(ErrValidation, "start date must not be after end date")
	ErrLectureInPast           = newKindError(ErrValidation, "lecture date time must be in the future")
	ErrInvalidAttendanceStatus = newKindError(ErrValidation, "attendance status must be PRESENT, ABSENT or LATE")
	ErrInvalidClassStatus      = newKindError(ErrValidation, "class status must be ACTIVE, ARCHIVED or CANCELLED")
	ErrClassNotActive          = newKindError(ErrValidation, "lectures can only be scheduled in an active class")
	ErrClassNotArchived        = newKindError(ErrValidation, "only an archived class can be restored")

	ErrIdentityUnavailable = newKindError(ErrUpstreamUnavailable, "identity service unavailable")

	ErrLectureHasAttendance = newKindError(ErrConflict, "lecture has attendance records and cannot be deleted")
)
