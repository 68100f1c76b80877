package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// MenuItem is a node of the admin navigation tree. A node is visible when every
// requirement it declares is satisfied: any of Roles, and Permission.
type MenuItem struct {
	Key        string     `mapstructure:"key" json:"key"`
	Label      string     `mapstructure:"label" json:"label"`
	Route      string     `mapstructure:"route" json:"route,omitempty"`
	Icon       string     `mapstructure:"icon" json:"icon,omitempty"`
	Permission string     `mapstructure:"permission" json:"permission,omitempty"`
	Roles      []string   `mapstructure:"roles" json:"roles,omitempty"`
	Children   []MenuItem `mapstructure:"children" json:"children,omitempty"`
}

var ErrEmptyMenu = errors.New("menu configuration has no items")

// LoadMenu reads the "menu" tree from a yaml/json file. The menu is static
// deployment config, so any error here should stop the process.
func LoadMenu(path string) ([]MenuItem, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read menu config %s: %w", path, err)
	}

	var items []MenuItem
	if err := v.UnmarshalKey("menu", &items); err != nil {
		return nil, fmt.Errorf("decode menu config %s: %w", path, err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyMenu
	}
	if err := validateMenu(items, map[string]struct{}{}); err != nil {
		return nil, fmt.Errorf("invalid menu config %s: %w", path, err)
	}
	return items, nil
}

func validateMenu(items []MenuItem, seen map[string]struct{}) error {
	for _, item := range items {
		if item.Key == "" {
			return fmt.Errorf("menu item %q has no key", item.Label)
		}
		if item.Label == "" {
			return fmt.Errorf("menu item %q has no label", item.Key)
		}
		if _, dup := seen[item.Key]; dup {
			return fmt.Errorf("duplicate menu key %q", item.Key)
		}
		seen[item.Key] = struct{}{}
		if err := validateMenu(item.Children, seen); err != nil {
			return err
		}
	}
	return nil
}

// FilteredMenuTree returns the part of the configured menu the principal may see.
// Children are filtered independently, so a visible parent may end up with no children.
// The configured tree is never modified.
func (r *Resolver) FilteredMenuTree(ctx context.Context, p *Principal) []MenuItem {
	if r.IsSuperAdmin(ctx, p) {
		return cloneMenu(r.menu)
	}
	return r.filterMenu(ctx, p, r.menu)
}

// Menu returns a copy of the full configured tree.
func (r *Resolver) Menu() []MenuItem {
	return cloneMenu(r.menu)
}

func (r *Resolver) filterMenu(ctx context.Context, p *Principal, items []MenuItem) []MenuItem {
	if items == nil {
		return nil
	}

	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		if !r.menuItemVisible(ctx, p, item) {
			continue
		}
		node := item
		node.Roles = cloneStrings(item.Roles)
		node.Children = r.filterMenu(ctx, p, item.Children)
		out = append(out, node)
	}
	return out
}

func (r *Resolver) menuItemVisible(ctx context.Context, p *Principal, item MenuItem) bool {
	if len(item.Roles) > 0 && !r.HasAnyRole(ctx, p, item.Roles) {
		return false
	}
	if item.Permission != "" && !r.HasPermission(ctx, p, item.Permission) {
		return false
	}
	return true
}

func cloneMenu(items []MenuItem) []MenuItem {
	if items == nil {
		return nil
	}
	out := make([]MenuItem, len(items))
	for i, item := range items {
		out[i] = item
		out[i].Roles = cloneStrings(item.Roles)
		out[i].Children = cloneMenu(item.Children)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
