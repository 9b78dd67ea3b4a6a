package model

import (
	"errors"
	"strconv"
	"time"
)

// ErrIncompleteSession means a stored session lacks a required field.
var ErrIncompleteSession = errors.New("session record is incomplete")

// TeacherIdentity is what the console keeps about a logged-in teacher.
// The password is never stored.
type TeacherIdentity struct {
	TeacherID int    `json:"teacher_id"`
	Name      string `json:"teacher_name"`
	Phone     string `json:"teacher_phone"`
	Title     string `json:"title,omitempty"`
}

// Session is the server-side record behind the console cookie. A session may
// carry a teacher login, an admin token login and a student portal login at
// the same time; guards check only the part they need.
type Session struct {
	ID        string           `json:"id"`
	Teacher   *TeacherIdentity `json:"teacher,omitempty"`
	Tokens    *TokenPair       `json:"tokens,omitempty"`
	StudentID int              `json:"student_record_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Validate checks the required fields of every part that is present.
func (s *Session) Validate() error {
	if s == nil || s.ID == "" {
		return ErrIncompleteSession
	}
	if s.Teacher == nil && s.Tokens == nil && s.StudentID == 0 {
		return ErrIncompleteSession
	}
	if t := s.Teacher; t != nil && (t.TeacherID == 0 || t.Name == "" || t.Phone == "") {
		return ErrIncompleteSession
	}
	if p := s.Tokens; p != nil && p.Access == "" {
		return ErrIncompleteSession
	}
	return nil
}

// Actor names the session holder for audit records.
func (s *Session) Actor() string {
	switch {
	case s == nil:
		return "anonymous"
	case s.Teacher != nil:
		return "teacher:" + strconv.Itoa(s.Teacher.TeacherID)
	case s.Tokens != nil:
		return "admin"
	case s.StudentID != 0:
		return "student:" + strconv.Itoa(s.StudentID)
	default:
		return "anonymous"
	}
}

// IdentityFromTeacher strips a teacher record down to the session identity.
func IdentityFromTeacher(t Teacher) *TeacherIdentity {
	return &TeacherIdentity{
		TeacherID: t.TeacherID,
		Name:      t.TeacherName,
		Phone:     t.TeacherPhone,
		Title:     t.Title,
	}
}
