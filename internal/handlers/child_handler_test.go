package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"famlink/internal/models"
)

func TestChildVisibilityThroughAPI(t *testing.T) {
	srv := newTestServer(t, 100)
	amina := srv.register(t, "amina")
	bilal := srv.register(t, "bilal")
	camila := srv.register(t, "camila")
	srv.pair(t, amina, bilal)

	rec := srv.do(t, http.MethodPost, "/api/children", amina.token, map[string]any{
		"name":        "Aisha",
		"birth_date":  "2018-03-04",
		"account_ids": []int64{bilal.profile.ID},
	})
	expectStatus(t, rec, http.StatusCreated)
	var aisha models.Child
	decodeBody(t, rec, &aisha)

	for _, c := range []client{amina, bilal} {
		rec = srv.do(t, http.MethodGet, "/api/children", c.token, nil)
		var children []models.Child
		decodeBody(t, rec, &children)
		if len(children) != 1 || children[0].ID != aisha.ID {
			t.Errorf("%s sees %+v, want Aisha", c.profile.Name, children)
		}
	}

	path := fmt.Sprintf("/api/children/%d", aisha.ID)
	expectStatus(t, srv.do(t, http.MethodGet, path, camila.token, nil), http.StatusNotFound)
	expectStatus(t, srv.do(t, http.MethodPut, path, camila.token, map[string]string{"name": "X"}), http.StatusNotFound)

	rec = srv.do(t, http.MethodPut, path, bilal.token, map[string]string{"gender": "female"})
	expectStatus(t, rec, http.StatusOK)
	var updated models.Child
	decodeBody(t, rec, &updated)
	if updated.Gender != "female" || updated.Name != "Aisha" {
		t.Errorf("PUT child = %+v", updated)
	}

	expectStatus(t, srv.do(t, http.MethodPut, path, bilal.token, map[string]string{}), http.StatusBadRequest)
	expectStatus(t, srv.do(t, http.MethodDelete, path, bilal.token, nil), http.StatusNoContent)
	expectStatus(t, srv.do(t, http.MethodGet, path, amina.token, nil), http.StatusNotFound)
}

func TestCreateChildWithUnpairedAccount(t *testing.T) {
	srv := newTestServer(t, 100)
	amina := srv.register(t, "amina")
	bilal := srv.register(t, "bilal")

	rec := srv.do(t, http.MethodPost, "/api/children", amina.token, map[string]any{
		"name":        "Aisha",
		"account_ids": []int64{bilal.profile.ID},
	})
	expectStatus(t, rec, http.StatusUnprocessableEntity)
}

func TestActivityEndpoints(t *testing.T) {
	srv := newTestServer(t, 100)
	amina := srv.register(t, "amina")
	camila := srv.register(t, "camila")

	rec := srv.do(t, http.MethodPost, "/api/children", amina.token, map[string]any{"name": "Aisha"})
	expectStatus(t, rec, http.StatusCreated)
	var child models.Child
	decodeBody(t, rec, &child)
	base := fmt.Sprintf("/api/children/%d/activities", child.ID)

	for _, d := range []string{"2024-03-10", "2024-03-11"} {
		rec = srv.do(t, http.MethodPost, base, amina.token, map[string]any{"kind": "prayer", "day": d, "detail": "Isha"})
		expectStatus(t, rec, http.StatusOK)
	}
	expectStatus(t, srv.do(t, http.MethodPost, base, amina.token, map[string]any{"kind": "prayer", "day": "2024-03-10", "detail": "lunch"}), http.StatusBadRequest)
	expectStatus(t, srv.do(t, http.MethodPost, base, camila.token, map[string]any{"kind": "fasting", "day": "2024-03-10"}), http.StatusNotFound)

	rec = srv.do(t, http.MethodGet, base+"?from=2024-03-11", amina.token, nil)
	expectStatus(t, rec, http.StatusOK)
	var list []models.Activity
	decodeBody(t, rec, &list)
	if len(list) != 1 || list[0].Detail != "isha" || list[0].Day.String() != "2024-03-11" {
		t.Fatalf("filtered activities = %+v", list)
	}

	expectStatus(t, srv.do(t, http.MethodGet, base+"?from=yesterday", amina.token, nil), http.StatusBadRequest)

	rec = srv.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", base, list[0].ID), amina.token, nil)
	expectStatus(t, rec, http.StatusNoContent)

	rec = srv.do(t, http.MethodGet, base, amina.token, nil)
	decodeBody(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("after delete %d activities, want 1", len(list))
	}
}
