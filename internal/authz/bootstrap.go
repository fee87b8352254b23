package authz

import "fmt"

// RoleSeed 预置角色
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 后台预置角色
// auditor 只读全部后台接口；其余角色在只读基础上开放各自负责的写操作。
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role:     "auditor",
			Policies: []Policy{{Object: "/admin/*", Action: "GET"}},
		},
		{
			Role:     "catalog_manager",
			Inherits: []string{"auditor"},
			Policies: []Policy{
				{Object: "/admin/categories", Action: "*"},
				{Object: "/admin/categories/:id", Action: "*"},
				{Object: "/admin/products", Action: "*"},
				{Object: "/admin/products/:id", Action: "*"},
			},
		},
		{
			Role:     "order_manager",
			Inherits: []string{"auditor"},
			Policies: []Policy{
				{Object: "/admin/orders/:id", Action: "PATCH"},
			},
		},
		{
			Role:     "support",
			Inherits: []string{"auditor"},
			Policies: []Policy{
				{Object: "/admin/users/:id", Action: "PATCH"},
				{Object: "/admin/orders/:id", Action: "PATCH"},
			},
		},
	}
}

// BootstrapBuiltinRoles 写入预置角色、继承关系与策略，已存在的规则保持不变
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return fmt.Errorf("builtin role %s: %w", seed.Role, err)
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return fmt.Errorf("builtin role %s: %w", parent, err)
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role %s -> %s failed: %w", role, parentRole, err)
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("builtin policy %s %s: %w", policy.Action, policy.Object, err)
			}
		}
	}
	return nil
}
