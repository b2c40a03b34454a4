package service

import "github.com/edupulse/class-service/internal/model"

func requirePrincipal(p model.Principal) error {
	if !p.Authenticated() {
		return ErrPrincipalRequired
	}
	return nil
}

// requireOwner enforces class.LecturerID == acting user. Admins get no bypass.
func requireOwner(c *model.Class, p model.Principal) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if c.LecturerID != p.UserID {
		return ErrNotClassOwner
	}
	return nil
}

func requireOwnerOrAdmin(c *model.Class, p model.Principal) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if p.IsAdmin() {
		return nil
	}
	return requireOwner(c, p)
}

// requireSelfIfStudent stops a student principal from acting on another student's attendance.
func requireSelfIfStudent(studentID int64, p model.Principal) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if p.IsStudent() && p.UserID != studentID {
		return ErrNotSelf
	}
	return nil
}
