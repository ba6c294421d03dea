// Package dashboard serves the landing summary and the navigation menu.
package dashboard

import "crm_backend/internal/shared/access"

// MenuItem is one navigation entry.
type MenuItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  string `json:"icon"`
}

type menuEntry struct {
	item      MenuItem
	adminOnly bool
}

var menuTable = [...]menuEntry{
	{item: MenuItem{Title: "Dashboard", URL: "/dashboard", Icon: "layout-dashboard"}},
	{item: MenuItem{Title: "CRM - Leads", URL: "/crm", Icon: "users"}},
	{item: MenuItem{Title: "Campanhas", URL: "/campanhas", Icon: "send"}},
	{item: MenuItem{Title: "Chat", URL: "/chat", Icon: "message-square"}},
	{item: MenuItem{Title: "Analytics", URL: "/analytics", Icon: "bar-chart-3"}},
	{item: MenuItem{Title: "Administração", URL: "/admin", Icon: "shield"}, adminOnly: true},
	{item: MenuItem{Title: "Cadastrar Vendedor", URL: "/vendedor/cadastro", Icon: "user-plus"}, adminOnly: true},
}

// MenuFor returns the navigation visible to the given role. The result is a
// fresh slice on every call.
func MenuFor(role string) []MenuItem {
	items := make([]MenuItem, 0, len(menuTable))
	for _, e := range menuTable {
		if e.adminOnly && role != access.RoleAdmin {
			continue
		}
		items = append(items, e.item)
	}
	return items
}

// MenuForActor picks the widest menu among the actor's roles.
func MenuForActor(a access.Actor) []MenuItem {
	if a.IsAdmin() {
		return MenuFor(access.RoleAdmin)
	}
	if len(a.Roles) > 0 {
		return MenuFor(a.Roles[0])
	}
	return MenuFor("")
}
