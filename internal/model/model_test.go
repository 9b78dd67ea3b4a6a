package model

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringAcceptsNumbersAndStrings(t *testing.T) {
	var s struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, sonic.ConfigStd.Unmarshal([]byte(`{"a":9876543210,"b":"2","c":null}`), &s))

	assert.Equal(t, "9876543210", s.A.String())
	assert.Equal(t, 2, s.B.Int())
	assert.Equal(t, "", s.C.String())
	assert.Equal(t, 0, FlexString("abc").Int())
}

func TestAttendanceToggle(t *testing.T) {
	assert.Equal(t, Present, Absent.Toggled())
	assert.Equal(t, Absent, Present.Toggled())
	assert.Equal(t, Absent, Absent.Toggled().Toggled())
}

func TestInMonth(t *testing.T) {
	e := AttendanceEntry{Date: "2024-05-31"}
	assert.True(t, e.InMonth("2024-05"))
	assert.False(t, e.InMonth("2024-06"))
	assert.False(t, e.InMonth(""))
}

func TestStudentFilterMatch(t *testing.T) {
	s := Student{StudentID: "CS-101", PhoneNumber: "9876543210", Department: "Computer Science"}

	assert.True(t, StudentFilter{}.Match(s))
	assert.True(t, StudentFilter{StudentID: "cs-1", Phone: "6543", Department: "science"}.Match(s))
	assert.False(t, StudentFilter{Phone: "111"}.Match(s))
}

func TestSessionValidate(t *testing.T) {
	assert.ErrorIs(t, (&Session{}).Validate(), ErrIncompleteSession)
	assert.ErrorIs(t, (&Session{ID: "x"}).Validate(), ErrIncompleteSession)
	assert.ErrorIs(t, (&Session{ID: "x", Teacher: &TeacherIdentity{TeacherID: 1}}).Validate(), ErrIncompleteSession)
	assert.ErrorIs(t, (&Session{ID: "x", Tokens: &TokenPair{}}).Validate(), ErrIncompleteSession)

	ok := &Session{ID: "x", Tokens: &TokenPair{Access: "a"}, StudentID: 4}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, "admin", ok.Actor())
	assert.Equal(t, "anonymous", (*Session)(nil).Actor())
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)

	pair := TokenPair{Access: signed}
	got, err := pair.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))
	assert.False(t, pair.Expired(time.Now()))
	assert.True(t, pair.Expired(exp.Add(time.Second)))

	assert.False(t, TokenPair{Access: "not-a-jwt"}.Expired(time.Now()))
}

func TestNoticeFieldsOmitEmptyDate(t *testing.T) {
	assert.Len(t, NoticeForm{Subject: "a", Message: "b"}.Fields(), 2)
	assert.Len(t, NoticeForm{Subject: "a", Message: "b", Date: "2024-05-01"}.Fields(), 3)
}
