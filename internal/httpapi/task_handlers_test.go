package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"taskdeck/internal/task"
)

func (c *apiClient) createTask(token, title string) task.Task {
	c.t.Helper()
	resp := c.post("/api/v1/tasks", map[string]string{"title": title}, auth(token))
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("create task: status %d", resp.StatusCode)
	}
	var created task.Task
	decodeBody(c.t, resp, &created)
	return created
}

func TestTaskLifecycle(t *testing.T) {
	c := newTestAPI(t)
	c.register("ada@example.com", "ada", "Str0ngEnough")
	pair := c.login("ada", "Str0ngEnough")

	created := c.createTask(pair.AccessToken, "write report")
	if created.Status != task.StatusTodo || created.CompletedAt != nil {
		t.Fatalf("created = %+v", created)
	}

	// Complete it via the status endpoint.
	resp := c.do(http.MethodPatch, "/api/v1/tasks/"+created.ID+"/status",
		map[string]string{"status": "completed"}, auth(pair.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete: status %d", resp.StatusCode)
	}
	var completed task.Task
	decodeBody(t, resp, &completed)
	if completed.CompletedAt == nil {
		t.Fatal("completed_at not set")
	}

	// Reopen clears the completion timestamp.
	resp = c.do(http.MethodPatch, "/api/v1/tasks/"+created.ID+"/status",
		map[string]string{"status": "todo"}, auth(pair.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reopen: status %d", resp.StatusCode)
	}
	var reopened task.Task
	decodeBody(t, resp, &reopened)
	if reopened.CompletedAt != nil {
		t.Fatal("completed_at not cleared")
	}

	resp = c.do(http.MethodPut, "/api/v1/tasks/"+created.ID,
		map[string]string{"title": "write final report", "priority": "high"}, auth(pair.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d", resp.StatusCode)
	}
	var updated task.Task
	decodeBody(t, resp, &updated)
	if updated.Title != "write final report" || updated.Priority != task.PriorityHigh {
		t.Fatalf("updated = %+v", updated)
	}

	resp = c.do(http.MethodDelete, "/api/v1/tasks/"+created.ID, nil, auth(pair.AccessToken))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	drain(resp)

	resp = c.get("/api/v1/tasks/"+created.ID, nil, auth(pair.AccessToken))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted: status %d", resp.StatusCode)
	}
	drain(resp)
}

func TestTaskOwnershipEnforced(t *testing.T) {
	c := newTestAPI(t)
	c.register("ada@example.com", "ada", "Str0ngEnough")
	c.register("bob@example.com", "bob", "Str0ngEnough")
	adaTok := c.login("ada", "Str0ngEnough").AccessToken
	bobTok := c.login("bob", "Str0ngEnough").AccessToken

	created := c.createTask(adaTok, "private")

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/v1/tasks/" + created.ID, nil},
		{http.MethodPut, "/api/v1/tasks/" + created.ID, map[string]string{"title": "stolen"}},
		{http.MethodPatch, "/api/v1/tasks/" + created.ID + "/status", map[string]string{"status": "completed"}},
		{http.MethodDelete, "/api/v1/tasks/" + created.ID, nil},
	} {
		resp := c.do(tc.method, tc.path, tc.body, auth(bobTok))
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s by non-owner: status %d", tc.method, tc.path, resp.StatusCode)
		}
		drain(resp)
	}

	// Resource unchanged after the denied mutations.
	resp := c.get("/api/v1/tasks/"+created.ID, nil, auth(adaTok))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner get: status %d", resp.StatusCode)
	}
	var got task.Task
	decodeBody(t, resp, &got)
	if got.Title != "private" || got.Status != task.StatusTodo {
		t.Fatalf("task mutated: %+v", got)
	}
}

func TestTaskListFiltersAndPagination(t *testing.T) {
	c := newTestAPI(t)
	c.register("ada@example.com", "ada", "Str0ngEnough")
	c.register("bob@example.com", "bob", "Str0ngEnough")
	c.registerAdmin("root@example.com", "root", "Str0ngEnough")
	adaTok := c.login("ada", "Str0ngEnough").AccessToken
	bobTok := c.login("bob", "Str0ngEnough").AccessToken
	rootTok := c.login("root", "Str0ngEnough").AccessToken

	for i := 0; i < 3; i++ {
		c.createTask(adaTok, fmt.Sprintf("ada task %d", i))
	}
	c.createTask(bobTok, "bob task")

	var page task.Page
	resp := c.get("/api/v1/tasks", nil, auth(adaTok))
	decodeBody(t, resp, &page)
	if page.Total != 3 {
		t.Fatalf("ada sees %d tasks, want 3", page.Total)
	}

	resp = c.get("/api/v1/tasks", nil, auth(rootTok))
	decodeBody(t, resp, &page)
	if page.Total != 4 {
		t.Fatalf("admin sees %d tasks, want 4", page.Total)
	}

	resp = c.get("/api/v1/tasks", url.Values{"page": {"2"}, "page_size": {"2"}}, auth(adaTok))
	decodeBody(t, resp, &page)
	if page.Page != 2 || page.PageSize != 2 || len(page.Items) != 1 || page.TotalPages != 2 {
		t.Fatalf("page = %+v", page)
	}

	resp = c.get("/api/v1/tasks", url.Values{"search": {"task 1"}}, auth(adaTok))
	decodeBody(t, resp, &page)
	if page.Total != 1 {
		t.Fatalf("search total = %d", page.Total)
	}

	resp = c.get("/api/v1/tasks", url.Values{"status": {"bogus"}}, auth(adaTok))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("bad status filter: status %d", resp.StatusCode)
	}
	drain(resp)
}

func TestCreateTaskValidation(t *testing.T) {
	c := newTestAPI(t)
	c.register("ada@example.com", "ada", "Str0ngEnough")
	tok := c.login("ada", "Str0ngEnough").AccessToken

	resp := c.post("/api/v1/tasks", map[string]string{}, auth(tok))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("missing title: status %d", resp.StatusCode)
	}
	drain(resp)

	resp = c.post("/api/v1/tasks", map[string]string{"title": "x", "priority": "urgent"}, auth(tok))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("bad priority: status %d", resp.StatusCode)
	}
	drain(resp)
}
