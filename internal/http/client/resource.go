package client

import "github.com/aanand-mishra/school-admin/internal/types"

// Op is a backend operation on a resource.
type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Resource is the route table of one record kind on the backend.
// An empty path means the backend does not offer that operation.
// Get, Update and Delete paths take the record id as a final segment.
type Resource struct {
	Kind types.Kind

	ListPath   string
	GetPath    string
	CreatePath string
	UpdatePath string
	DeletePath string
}

// Route table:
//
//	GET    /getStudentsData        → list students
//	GET    /getStudentsData/{id}   → get one student
//	POST   /postStudentsData       → create a student
//	PUT    /updateStudent/{id}     → update a student
//	DELETE /deleteStudent/{id}     → delete a student
//	GET    /getTeachers            → list teachers
//	DELETE /deleteTeacher/{id}     → delete a teacher
var (
	Students = Resource{
		Kind:       types.KindStudent,
		ListPath:   "/getStudentsData",
		GetPath:    "/getStudentsData",
		CreatePath: "/postStudentsData",
		UpdatePath: "/updateStudent",
		DeletePath: "/deleteStudent",
	}

	Teachers = Resource{
		Kind:       types.KindTeacher,
		ListPath:   "/getTeachers",
		DeletePath: "/deleteTeacher",
	}
)

// ResourceFor returns the route table for kind.
func ResourceFor(kind types.Kind) (Resource, bool) {
	switch kind {
	case types.KindStudent:
		return Students, true
	case types.KindTeacher:
		return Teachers, true
	default:
		return Resource{}, false
	}
}

func (r Resource) path(op Op) string {
	switch op {
	case OpList:
		return r.ListPath
	case OpGet:
		return r.GetPath
	case OpCreate:
		return r.CreatePath
	case OpUpdate:
		return r.UpdatePath
	case OpDelete:
		return r.DeletePath
	default:
		return ""
	}
}

// Supports reports whether the backend offers op for this resource.
func (r Resource) Supports(op Op) bool {
	return r.path(op) != ""
}
