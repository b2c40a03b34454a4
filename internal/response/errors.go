package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrPrincipalRequired ErrCode = "PRINCIPAL_REQUIRED"
	ErrTokenInvalid      ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrNotClassOwner   ErrCode = "NOT_CLASS_OWNER"
	ErrLecturerInvalid ErrCode = "LECTURER_INVALID"
	ErrNotSelf         ErrCode = "NOT_SELF"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidStatus  ErrCode = "INVALID_STATUS"
	ErrLectureInPast  ErrCode = "LECTURE_IN_PAST"
	ErrClassNotActive ErrCode = "CLASS_NOT_ACTIVE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound           ErrCode = "NOT_FOUND"
	ErrClassNotFound      ErrCode = "CLASS_NOT_FOUND"
	ErrLectureNotFound    ErrCode = "LECTURE_NOT_FOUND"
	ErrAttendanceNotFound ErrCode = "ATTENDANCE_NOT_FOUND"
	ErrGradeNotFound      ErrCode = "GRADE_NOT_FOUND"
	ErrStudentNotFound    ErrCode = "STUDENT_NOT_FOUND"
	ErrConflict           ErrCode = "CONFLICT"
	ErrDependencyExists   ErrCode = "DEPENDENCY_EXISTS"

	// ─── Upstream ──────────────────────────────────────────────────────
	ErrUpstreamUnavailable ErrCode = "UPSTREAM_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrPrincipalRequired:
		return "An authenticated user is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrNotClassOwner:
		return "Only the lecturer who owns this class may change it."
	case ErrLecturerInvalid:
		return "The acting user is not a valid lecturer."
	case ErrNotSelf:
		return "Students may only access their own attendance."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidStatus:
		return "Unknown status value."
	case ErrLectureInPast:
		return "Lecture date and time must be in the future."
	case ErrClassNotActive:
		return "The class is not in a state that allows this action."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrClassNotFound:
		return "Class not found."
	case ErrLectureNotFound:
		return "Lecture not found."
	case ErrAttendanceNotFound:
		return "Attendance has not been marked for this lecture."
	case ErrGradeNotFound:
		return "Grade not found."
	case ErrStudentNotFound:
		return "Student not found."
	case ErrConflict:
		return "The request conflicts with the current state of the resource."
	case ErrDependencyExists:
		return "The resource cannot be deleted because other records depend on it."

	// ─── Upstream ──────────────────────────────────────────────────────
	case ErrUpstreamUnavailable:
		return "A dependent service is unavailable. Please try again later."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
