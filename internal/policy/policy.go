// Package policy decides who may read and post in group rooms. It is
// pure: no I/O, no side effects, just role and department rules over
// already-loaded entities. DM access is participant membership and is
// checked at the API boundary, not here.
package policy

import (
	"strings"

	"github.com/manishhsuthar/EduConnect/internal/models"
)

// DepartmentKeywords maps a department keyword to the room-name terms a
// faculty member of that department may access.
type DepartmentKeywords struct {
	Key   string
	Terms []string
}

// DepartmentKeywordTable is matched against the faculty's department
// string; the first group whose Key appears in the department wins.
var DepartmentKeywordTable = []DepartmentKeywords{
	{Key: "computer", Terms: []string{"computer", "code"}},
	{Key: "civil", Terms: []string{"civil"}},
	{Key: "electrical", Terms: []string{"electrical"}},
	{Key: "mechanical", Terms: []string{"mechanical"}},
	{Key: "electronics", Terms: []string{"electronics", "communication"}},
	{Key: "information", Terms: []string{"information", "it"}},
}

// isGlobalRoom reports whether the room is open to all faculty
// regardless of department.
func isGlobalRoom(roomName string) bool {
	lower := strings.ToLower(roomName)
	return lower == "general" || lower == "announcements" || strings.Contains(lower, "help")
}

func departmentAllowsRoom(department, roomName string) bool {
	dept := strings.ToLower(strings.TrimSpace(department))
	room := strings.ToLower(roomName)
	if dept == "" {
		return false
	}

	for _, group := range DepartmentKeywordTable {
		if !strings.Contains(dept, group.Key) {
			continue
		}
		for _, term := range group.Terms {
			if strings.Contains(room, term) {
				return true
			}
		}
		return false
	}

	// Unlisted departments fall back to a raw substring match.
	return strings.Contains(room, dept)
}

// CanAccessRoom decides whether the user may read or post in a group
// room at all. Admins see everything, students see every room, faculty
// are limited to global rooms and their department's rooms.
func CanAccessRoom(user *models.User, conv *models.Conversation) bool {
	if user == nil || conv == nil || conv.Type != models.ConversationGroup {
		return false
	}
	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleFaculty:
		return isGlobalRoom(conv.Name) || departmentAllowsRoom(user.Department, conv.Name)
	default:
		return true
	}
}

// CanPostInRoom layers the announcements rule on top of CanAccessRoom:
// only faculty post in the announcements room. Admins are deliberately
// not exempt.
func CanPostInRoom(user *models.User, conv *models.Conversation, hasText bool) bool {
	if !CanAccessRoom(user, conv) {
		return false
	}
	if strings.EqualFold(conv.Name, "announcements") {
		return user.Role == models.RoleFaculty
	}
	return true
}
