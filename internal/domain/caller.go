package domain

import "fmt"

// Caller is the authenticated identity on whose behalf an operation runs.
type Caller struct {
	UserID int32
	Role   Role
}

func (c Caller) IsHR() bool { return c.Role == RoleHR }

// RequireHR fails with ErrForbidden unless the caller is HR.
func (c Caller) RequireHR() error {
	if !c.IsHR() {
		return fmt.Errorf("user %d is not hr: %w", c.UserID, ErrForbidden)
	}
	return nil
}

// RequireSelfOrHR fails with ErrForbidden unless the caller is HR or the employee themselves.
func (c Caller) RequireSelfOrHR(employeeID int32) error {
	if c.IsHR() || c.UserID == employeeID {
		return nil
	}
	return fmt.Errorf("user %d cannot access employee %d: %w", c.UserID, employeeID, ErrForbidden)
}
