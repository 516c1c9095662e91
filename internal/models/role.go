package models

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleSpeaker   Role = "speaker"
	RoleOrganizer Role = "organizer"
	RoleSponsor   Role = "sponsor"
	RoleVolunteer Role = "volunteer"
	RoleVIP       Role = "vip"

	// Labels only offered by the ticket generator.
	RoleStaff     Role = "staff"
	RolePress     Role = "press"
	RoleExhibitor Role = "exhibitor"
	RoleGuest     Role = "guest"
)

var roles = []Role{
	RoleAttendee,
	RoleSpeaker,
	RoleOrganizer,
	RoleSponsor,
	RoleVolunteer,
	RoleVIP,
	RoleStaff,
	RolePress,
	RoleExhibitor,
	RoleGuest,
}

func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

func ParseRole(s string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return RoleAttendee, nil
	}
	for _, role := range roles {
		if string(role) == normalized {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Label() string {
	if r == RoleVIP {
		return "VIP"
	}
	s := string(r)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
