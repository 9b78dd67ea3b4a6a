package backend

import "strconv"

// Collection paths of the remote API. All of them end with a slash.
const (
	PathToken        = "/api/token/"
	PathTokenRefresh = "/api/token/refresh/"
	PathTeachers     = "/teacher/teacher/"
	PathStudents     = "/payment/students/"
	PathPayments     = "/payment/payments/"
	PathNotices      = "/notice/notices/"
	PathAttendance   = "/attendance/attendance/"
	PathResults      = "/result/students/"
)

// ItemPath returns the path of one item in a collection, e.g. "/payment/payments/12/".
func ItemPath(collection string, id int) string {
	return collection + strconv.Itoa(id) + "/"
}
