package model

// ClassFilter narrows class listings. Nil fields are not applied.
type ClassFilter struct {
	LecturerID *int64
	GradeID    *int64
	Status     *ClassStatus
}

// AttendanceFilter narrows attendance listings. Nil fields are not applied.
type AttendanceFilter struct {
	LectureID *int64
	StudentID *int64
	Status    *AttendanceStatus
}
