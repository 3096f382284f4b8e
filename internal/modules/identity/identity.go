// Package identity defines the roles and product domains that scope every
// engine operation, and the Principal each request acts as.
package identity

// Role is an employee's role in the sales organisation.
type Role string

const (
	RoleSales            Role = "sales"
	RoleLaptopManager    Role = "laptop_manager"
	RolePCManager        Role = "pc_manager"
	RoleCorporateManager Role = "corporate_manager"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleSales, RoleLaptopManager, RolePCManager, RoleCorporateManager:
		return Role(s), true
	}
	return "", false
}

// Category is a retail product domain.
type Category string

const (
	CategoryLaptop      Category = "laptop"
	CategoryPCComponent Category = "pc_component"
)

// ParseCategory validates a retail item category.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryLaptop, CategoryPCComponent:
		return Category(s), true
	}
	return "", false
}

// ManagerDomain maps a role to the product category it may see and act on.
// Sales and corporate managers are scoped by assignment/ownership instead of
// category, so ok is false for them.
func ManagerDomain(role Role) (Category, bool) {
	switch role {
	case RoleLaptopManager:
		return CategoryLaptop, true
	case RolePCManager:
		return CategoryPCComponent, true
	}
	return "", false
}

// Principal is the authenticated actor behind a request.
type Principal struct {
	EmployeeID int64
	Role       Role
	StoreID    *int64
}

// IsManager reports whether the principal is a retail domain manager.
func (p Principal) IsManager() bool {
	_, ok := ManagerDomain(p.Role)
	return ok
}
