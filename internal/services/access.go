package services

import "github.com/mobilecollector/backoffice/types"

// Action is a capability checked against the caller's role.
type Action string

const (
	ActionReadCustomers      Action = "customers:read"
	ActionWriteCustomers     Action = "customers:write"
	ActionCreateTransactions Action = "transactions:create"
	ActionReadTransactions   Action = "transactions:read"
	ActionWriteTransactions  Action = "transactions:write"
	ActionCleanTransactions  Action = "transactions:cleanup"
	ActionReadReports        Action = "reports:read"
	ActionReadUsers          Action = "users:read"
	ActionWriteUsers         Action = "users:write"
	ActionReadTellers        Action = "tellers:read"
)

var (
	allRoles   = []types.Role{types.RoleAdmin, types.RoleSuperAdmin, types.RoleMarketing, types.RoleTeller}
	adminRoles = []types.Role{types.RoleAdmin, types.RoleSuperAdmin}
	superOnly  = []types.Role{types.RoleSuperAdmin}
)

var policy = map[Action][]types.Role{
	ActionReadCustomers:      allRoles,
	ActionWriteCustomers:     adminRoles,
	ActionCreateTransactions: allRoles,
	ActionReadTransactions:   allRoles,
	ActionWriteTransactions:  adminRoles,
	ActionCleanTransactions:  superOnly,
	ActionReadReports:        adminRoles,
	ActionReadUsers:          adminRoles,
	ActionWriteUsers:         superOnly,
	ActionReadTellers:        allRoles,
}

// Can reports whether role may perform action. Unknown actions are denied.
func Can(role types.Role, action Action) bool {
	for _, allowed := range policy[action] {
		if role == allowed {
			return true
		}
	}
	return false
}

// Capabilities lists every action granted to role.
func Capabilities(role types.Role) []Action {
	var actions []Action
	for _, action := range []Action{
		ActionReadCustomers,
		ActionWriteCustomers,
		ActionCreateTransactions,
		ActionReadTransactions,
		ActionWriteTransactions,
		ActionCleanTransactions,
		ActionReadReports,
		ActionReadUsers,
		ActionWriteUsers,
		ActionReadTellers,
	} {
		if Can(role, action) {
			actions = append(actions, action)
		}
	}
	return actions
}
