package content

import "github.com/Aviat-at/mapleCMS/internal/auth"

// Action identifies a content operation subject to permission checks.
type Action string

const (
	ActionCreate Action = "content.create"
	ActionRead   Action = "content.read"
	ActionUpdate Action = "content.update"
	ActionDelete Action = "content.delete"

	ActionSubmit  Action = "content.submit"
	ActionReject  Action = "content.reject"
	ActionApprove Action = "content.approve"
	ActionPublish Action = "content.publish"
	ActionArchive Action = "content.archive"
	ActionRestore Action = "content.restore"

	ActionManageUsers Action = "users.manage"
)

type rule struct {
	min Role
	// ownerScoped rules bind at author level: an author may act only on
	// items they own, while editor and above bypass the ownership check.
	ownerScoped bool
}

// Role aliases keep the permission table readable.
type Role = auth.Role

var allowTable = map[Action]rule{
	ActionCreate: {min: auth.RoleAuthor},
	ActionRead:   {min: auth.RoleViewer},
	ActionUpdate: {min: auth.RoleAuthor, ownerScoped: true},
	ActionDelete: {min: auth.RoleAuthor, ownerScoped: true},

	ActionSubmit:  {min: auth.RoleAuthor, ownerScoped: true},
	ActionReject:  {min: auth.RoleEditor},
	ActionApprove: {min: auth.RoleEditor},
	ActionPublish: {min: auth.RoleEditor},
	ActionArchive: {min: auth.RoleEditor},
	ActionRestore: {min: auth.RoleAdmin},

	ActionManageUsers: {min: auth.RoleAdmin},
}

// Allow maps (role, action, ownership) to a decision. Pure, total and
// default-deny: any pair not in the table is denied, as is any unknown role.
func Allow(role Role, action Action, isOwner bool) bool {
	r, ok := allowTable[action]
	if !ok {
		return false
	}
	if !role.AtLeast(r.min) {
		return false
	}
	if r.ownerScoped && !role.AtLeast(auth.RoleEditor) && !isOwner {
		return false
	}
	return true
}
