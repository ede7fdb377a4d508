package domain

import (
	"fmt"
	"sort"
	"strings"
)

const (
	PolicyNameAuthenticated   = "Authenticated"
	PolicyNameCanViewSalaries = "CanViewSalaries"
	PolicyNameCanManageUsers  = "CanManageUsers"
)

// Policy is a named set of roles allowed to perform an operation. A policy
// with no roles is the identity-only mode: any valid token passes.
type Policy struct {
	name  string
	roles map[Role]struct{}
}

// NewPolicy builds a role-restricted policy. It panics on an empty role list
// or an unknown role so a typo fails at startup instead of producing a policy
// nobody can satisfy.
func NewPolicy(name string, roles ...Role) Policy {
	if len(roles) == 0 {
		panic(fmt.Sprintf("policy %q: at least one role is required", name))
	}
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			panic(fmt.Sprintf("policy %q: unknown role %q", name, r))
		}
		set[r] = struct{}{}
	}
	return Policy{name: name, roles: set}
}

var (
	// PolicyAuthenticated requires a valid token and nothing else.
	PolicyAuthenticated = Policy{name: PolicyNameAuthenticated}

	// PolicyCanViewSalaries gates employee salary data.
	PolicyCanViewSalaries = NewPolicy(PolicyNameCanViewSalaries, RoleHR, RoleManager)

	// PolicyCanManageUsers gates account creation and deactivation.
	PolicyCanManageUsers = NewPolicy(PolicyNameCanManageUsers, RoleAdminSecurity)
)

var policies = map[string]Policy{
	PolicyNameAuthenticated:   PolicyAuthenticated,
	PolicyNameCanViewSalaries: PolicyCanViewSalaries,
	PolicyNameCanManageUsers:  PolicyCanManageUsers,
}

// PolicyByName looks up one of the registered policies.
func PolicyByName(name string) (Policy, bool) {
	p, ok := policies[name]
	return p, ok
}

func (p Policy) Name() string { return p.name }

// RoleRestricted is false for the identity-only policy.
func (p Policy) RoleRestricted() bool { return len(p.roles) > 0 }

// Allows reports whether role satisfies the policy.
func (p Policy) Allows(role Role) bool {
	if !p.RoleRestricted() {
		return true
	}
	_, ok := p.roles[role]
	return ok
}

// Roles returns the allowed roles in a stable order.
func (p Policy) Roles() []Role {
	out := make([]Role, 0, len(p.roles))
	for r := range p.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (p Policy) String() string {
	if !p.RoleRestricted() {
		return p.name
	}
	names := make([]string, 0, len(p.roles))
	for _, r := range p.Roles() {
		names = append(names, string(r))
	}
	return p.name + "{" + strings.Join(names, ",") + "}"
}
