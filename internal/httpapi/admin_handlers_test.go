package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"taskdeck/internal/audit"
	"taskdeck/internal/identity"
)

func TestAdminSurfacesRequireAdmin(t *testing.T) {
	c := newTestAPI(t)
	c.register("ada@example.com", "ada", "Str0ngEnough")
	tok := c.login("ada", "Str0ngEnough").AccessToken

	for _, path := range []string{"/api/v1/admin/dashboard", "/api/v1/admin/users"} {
		resp := c.get(path, nil, auth(tok))
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s as user: status %d", path, resp.StatusCode)
		}
		drain(resp)
	}
}

func TestAuditSurfacesAdmitAuditors(t *testing.T) {
	c := newTestAPI(t)
	id := c.register("aud@example.com", "auditor1", "Str0ngEnough")
	u, err := c.users.FindByID(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	u.Role = identity.RoleAuditor
	if err := c.users.Update(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	tok := c.login("auditor1", "Str0ngEnough").AccessToken

	// Auditors read the audit surfaces but not the admin ones.
	for _, path := range []string{"/api/v1/admin/audit-logs", "/api/v1/admin/security-events"} {
		resp := c.get(path, nil, auth(tok))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s as auditor: status %d", path, resp.StatusCode)
		}
		drain(resp)
	}
	resp := c.get("/api/v1/admin/dashboard", nil, auth(tok))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("dashboard as auditor: status %d", resp.StatusCode)
	}
	drain(resp)
}

func TestAdminRoleAndStatusChanges(t *testing.T) {
	c := newTestAPI(t)
	adminID := c.registerAdmin("root@example.com", "root", "Str0ngEnough")
	targetID := c.register("bob@example.com", "bob", "Str0ngEnough")
	rootTok := c.login("root", "Str0ngEnough").AccessToken

	resp := c.do(http.MethodPatch, "/api/v1/admin/users/"+targetID+"/role",
		map[string]string{"role": "auditor"}, auth(rootTok))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set role: status %d", resp.StatusCode)
	}
	var updated identity.User
	decodeBody(t, resp, &updated)
	if updated.Role != identity.RoleAuditor {
		t.Fatalf("role = %s", updated.Role)
	}

	// Self-deactivation rejected.
	f := false
	resp = c.do(http.MethodPatch, "/api/v1/admin/users/"+adminID+"/status",
		map[string]any{"is_active": f}, auth(rootTok))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("self deactivation: status %d", resp.StatusCode)
	}
	drain(resp)

	// Deactivating another user succeeds and persists.
	resp = c.do(http.MethodPatch, "/api/v1/admin/users/"+targetID+"/status",
		map[string]any{"is_active": f}, auth(rootTok))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deactivate other: status %d", resp.StatusCode)
	}
	decodeBody(t, resp, &updated)
	if updated.IsActive {
		t.Fatal("target still active")
	}

	// The deactivated account can no longer log in.
	resp = c.post("/api/v1/auth/login", map[string]string{
		"username": "bob", "password": "Str0ngEnough",
	}, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("login deactivated: status %d", resp.StatusCode)
	}
	drain(resp)
}

func TestDashboard(t *testing.T) {
	c := newTestAPI(t)
	c.registerAdmin("root@example.com", "root", "Str0ngEnough")
	rootTok := c.login("root", "Str0ngEnough").AccessToken
	c.createTask(rootTok, "one")

	resp := c.get("/api/v1/admin/dashboard", nil, auth(rootTok))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: status %d", resp.StatusCode)
	}
	var dash dashboardResponse
	decodeBody(t, resp, &dash)
	if dash.UserStats.TotalUsers != 1 || dash.TaskStats.TotalTasks != 1 {
		t.Fatalf("dashboard = %+v", dash)
	}
	if len(dash.RecentActivities) == 0 {
		t.Fatal("no recent activities")
	}
}

func TestSecurityEventsFilter(t *testing.T) {
	c := newTestAPI(t)
	c.registerAdmin("root@example.com", "root", "Str0ngEnough")
	rootTok := c.login("root", "Str0ngEnough").AccessToken

	// One failed login produces a WARNING event.
	resp := c.post("/api/v1/auth/login", map[string]string{
		"username": "root", "password": "WrongPass1",
	}, nil)
	drain(resp)

	resp = c.get("/api/v1/admin/security-events", url.Values{"severity": {audit.SeverityWarning}}, auth(rootTok))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("security events: status %d", resp.StatusCode)
	}
	var page auditPage[audit.SecurityEvent]
	decodeBody(t, resp, &page)
	if page.Total != 1 || page.Items[0].EventType != audit.EventLoginFailed {
		t.Fatalf("page = %+v", page)
	}

	resp = c.get("/api/v1/admin/security-events", url.Values{"severity": {"SEVERE"}}, auth(rootTok))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("bad severity: status %d", resp.StatusCode)
	}
	drain(resp)
}

func TestAuditLogsReverseChronPagination(t *testing.T) {
	c := newTestAPI(t)
	c.registerAdmin("root@example.com", "root", "Str0ngEnough")
	rootTok := c.login("root", "Str0ngEnough").AccessToken

	first := c.createTask(rootTok, "first")
	second := c.createTask(rootTok, "second")
	_ = first

	resp := c.get("/api/v1/admin/audit-logs", url.Values{"page": {"1"}, "page_size": {"1"}}, auth(rootTok))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("audit logs: status %d", resp.StatusCode)
	}
	var page auditPage[audit.Activity]
	decodeBody(t, resp, &page)
	if page.Total != 2 || len(page.Items) != 1 {
		t.Fatalf("page = %+v", page)
	}
	// Newest first.
	if page.Items[0].EntityID != second.ID {
		t.Fatalf("first item = %+v", page.Items[0])
	}
}
