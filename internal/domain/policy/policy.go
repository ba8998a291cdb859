// Package policy holds the per-role marketplace rules. It is injected into
// the rule services instead of living in package constants.
package policy

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"estatebot/internal/domain/user"
	"estatebot/internal/pkg/validator"
)

type RoleRule struct {
	// FreePeriodDays is the length of the free interval granted on selection;
	// zero means the role has none.
	FreePeriodDays    int  `yaml:"free_period_days" validate:"gte=0,lte=365"`
	LockedOnSelect    bool `yaml:"locked_on_select"`
	Premium           bool `yaml:"premium"`
	ContactRestricted bool `yaml:"contact_restricted"`
	Ratable           bool `yaml:"ratable"`
}

type Policy struct {
	Roles        map[user.Role]RoleRule `yaml:"roles" validate:"required,dive"`
	Admins       []int64                `yaml:"admins" validate:"dive,gt=0"`
	AdminContact string                 `yaml:"admin_contact" validate:"required"`
}

// Default mirrors the rules the bot launched with.
func Default() *Policy {
	return &Policy{
		Roles: map[user.Role]RoleRule{
			user.RoleBuyer:     {},
			user.RoleSeller:    {Ratable: true},
			user.RoleRenter:    {FreePeriodDays: 30, LockedOnSelect: true, Premium: true, Ratable: true},
			user.RoleRealtor:   {FreePeriodDays: 21, LockedOnSelect: true, Premium: true, ContactRestricted: true, Ratable: true},
			user.RoleAgency:    {FreePeriodDays: 14, LockedOnSelect: true, Premium: true, ContactRestricted: true, Ratable: true},
			user.RoleDeveloper: {FreePeriodDays: 7, LockedOnSelect: true, Premium: true, ContactRestricted: true, Ratable: true},
		},
		AdminContact: "@admin",
	}
}

// Load reads a YAML policy file. Roles missing from the file keep their
// default rule; admins and admin_contact from the file replace the defaults.
func Load(path string) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}

	var fromFile Policy
	if err := yaml.Unmarshal(raw, &fromFile); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	p := Default()
	for role, rule := range fromFile.Roles {
		p.Roles[role] = rule
	}
	if len(fromFile.Admins) > 0 {
		p.Admins = fromFile.Admins
	}
	if fromFile.AdminContact != "" {
		p.AdminContact = fromFile.AdminContact
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Policy) Validate() error {
	if err := validator.Struct(p); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	for role := range p.Roles {
		if !role.Valid() {
			return fmt.Errorf("invalid policy: unknown role %q", role)
		}
	}
	return nil
}

// WithAdmins adds admin ids (from the environment, typically).
func (p *Policy) WithAdmins(ids ...int64) *Policy {
	for _, id := range ids {
		if id > 0 && !slices.Contains(p.Admins, id) {
			p.Admins = append(p.Admins, id)
		}
	}
	return p
}

func (p *Policy) Rule(role user.Role) RoleRule {
	return p.Roles[role]
}

func (p *Policy) Known(role user.Role) bool {
	_, ok := p.Roles[role]
	return ok && role.Valid()
}

func (p *Policy) FreePeriodDays(role user.Role) int { return p.Roles[role].FreePeriodDays }
func (p *Policy) LocksOnSelect(role user.Role) bool { return p.Roles[role].LockedOnSelect }
func (p *Policy) IsPremium(role user.Role) bool { return p.Roles[role].Premium }
func (p *Policy) IsContactRestricted(role user.Role) bool { return p.Roles[role].ContactRestricted }
func (p *Policy) IsRatable(role user.Role) bool { return p.Roles[role].Ratable }

func (p *Policy) IsAdmin(userID int64) bool {
	return slices.Contains(p.Admins, userID)
}

func (p *Policy) AdminIDs() []int64 {
	return slices.Clone(p.Admins)
}
