package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"biovault/internal/router"
	"biovault/internal/seed"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_AccessLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ownerID := seed.DemoUserID

	// 1) Sin identidad no hay nada: el feed exige claims
	{
		st, _ := doReq(t, ts.URL, "GET", "/requests", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without identity, got %d", st)
		}
	}

	// 2) El seed trae dos pedidos pendientes
	var pending []struct {
		ID       string `json:"id"`
		Provider string `json:"provider"`
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/requests", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing requests, got %d body=%s", st, string(body))
		}
		if err := json.Unmarshal(body, &pending); err != nil {
			t.Fatalf("unmarshal requests: %v", err)
		}
		if len(pending) != 2 {
			t.Fatalf("expected 2 seeded requests, got %d", len(pending))
		}
	}

	// 3) Aprobar el primero crea un grant con ventana de 48h
	var approved struct {
		Message string `json:"message"`
		Grant   *struct {
			ID        string    `json:"id"`
			Provider  string    `json:"provider"`
			ExpiresAt time.Time `json:"expires_at"`
			GrantedAt time.Time `json:"granted_at"`
			TimeLeft  string    `json:"time_left"`
		} `json:"grant"`
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/requests/"+pending[0].ID+"/approve", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 approve, got %d body=%s", st, string(body))
		}
		if err := json.Unmarshal(body, &approved); err != nil {
			t.Fatalf("unmarshal approve: %v", err)
		}
		if approved.Grant == nil {
			t.Fatalf("expected grant in approve response, body=%s", string(body))
		}
		if approved.Message != "Access approved for "+pending[0].Provider+"." {
			t.Fatalf("unexpected approve message: %q", approved.Message)
		}
		if got := approved.Grant.ExpiresAt.Sub(approved.Grant.GrantedAt); got != 48*time.Hour {
			t.Fatalf("expected 48h window, got %v", got)
		}
	}

	// 4) Aprobar el mismo pedido de nuevo es 404: ya fue consumido
	{
		st, _ := doReq(t, ts.URL, "POST", "/requests/"+pending[0].ID+"/approve", ownerID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 on consumed request, got %d", st)
		}
	}

	// 5) Denegar el segundo lo consume sin crear grant
	{
		st, body := doReq(t, ts.URL, "POST", "/requests/"+pending[1].ID+"/deny", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 deny, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "GET", "/requests", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing requests, got %d", st)
		}
		var left []json.RawMessage
		_ = json.Unmarshal(body, &left)
		if len(left) != 0 {
			t.Fatalf("expected empty queue, got %d", len(left))
		}
	}

	// 6) Extender el grant nuevo corre expires_at exactamente 24h
	{
		st, body := doReq(t, ts.URL, "POST", "/grants/"+approved.Grant.ID+"/extend", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 extend, got %d body=%s", st, string(body))
		}
		var resp struct {
			Grant *struct {
				ExpiresAt time.Time `json:"expires_at"`
			} `json:"grant"`
		}
		if err := json.Unmarshal(body, &resp); err != nil || resp.Grant == nil {
			t.Fatalf("unmarshal extend: %v body=%s", err, string(body))
		}
		if got := resp.Grant.ExpiresAt.Sub(approved.Grant.ExpiresAt); got != 24*time.Hour {
			t.Fatalf("expected +24h, got %v", got)
		}
	}

	// 7) El audit log registra approve, deny y extend
	{
		st, body := doReq(t, ts.URL, "GET", "/audit", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 audit, got %d", st)
		}
		var entries []struct {
			EventType string `json:"event_type"`
			Actor     string `json:"actor"`
		}
		_ = json.Unmarshal(body, &entries)
		if !hasEvent(entries, "ACCESS_APPROVED") || !hasEvent(entries, "ACCESS_DENIED") || !hasEvent(entries, "ACCESS_EXTENDED") {
			t.Fatalf("expected approve/deny/extend audit entries, got %#v", entries)
		}
	}

	// 8) Revocar elimina el grant; revocar de nuevo es 404
	{
		st, _ := doReq(t, ts.URL, "POST", "/grants/"+approved.Grant.ID+"/revoke", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoke, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "POST", "/grants/"+approved.Grant.ID+"/revoke", ownerID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 on double revoke, got %d", st)
		}
	}
}

func TestHTTP_ProviderUpload_ThroughGrant(t *testing.T) {
	ts := newTestServer(t)
	ownerID := seed.DemoUserID

	// grant_001 es el grant activo del seed (Dr. Emily Thompson)
	st, body := doReq(t, ts.URL, "POST", "/grants/grant_001/records", ownerID, map[string]any{
		"name":     "MRI Scan Results",
		"category": "Imaging",
		"size":     "12.4 MB",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 provider upload, got %d body=%s", st, string(body))
	}

	// el documento queda en el historial con uploaded_by del provider
	st, body = doReq(t, ts.URL, "GET", "/records", ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 records, got %d", st)
	}
	var recs []struct {
		Name       string `json:"name"`
		UploadedBy string `json:"uploaded_by"`
	}
	_ = json.Unmarshal(body, &recs)
	found := false
	for _, rec := range recs {
		if rec.Name == "MRI Scan Results" && rec.UploadedBy == "Dr. Emily Thompson" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected provider-uploaded record, got %#v", recs)
	}

	// el owner recibe la notificación DOCUMENT_UPLOADED
	st, body = doReq(t, ts.URL, "GET", "/notifications", ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 notifications, got %d", st)
	}
	var notifs []struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		IsRead  bool   `json:"is_read"`
	}
	_ = json.Unmarshal(body, &notifs)
	found = false
	for _, n := range notifs {
		if n.Type == "DOCUMENT_UPLOADED" && !n.IsRead {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unread DOCUMENT_UPLOADED notification, got %#v", notifs)
	}

	// la actividad del grant muestra el upload del provider
	st, body = doReq(t, ts.URL, "GET", "/grants/grant_001/activity", ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 activity, got %d", st)
	}
}

func TestHTTP_Notifications_ReadFlow(t *testing.T) {
	ts := newTestServer(t)
	ownerID := seed.DemoUserID

	st, body := doReq(t, ts.URL, "GET", "/notifications/unread-count", ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 unread-count, got %d", st)
	}
	var count struct {
		Unread int `json:"unread"`
	}
	_ = json.Unmarshal(body, &count)
	if count.Unread == 0 {
		t.Fatalf("expected seeded unread notifications")
	}

	// marcar una notificación inexistente es idempotente: 204 igual
	st, _ = doReq(t, ts.URL, "POST", "/notifications/not-a-real-id/read", ownerID, nil)
	if st != http.StatusNoContent {
		t.Fatalf("expected 204 for unknown id, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "POST", "/notifications/read-all", ownerID, nil)
	if st != http.StatusNoContent {
		t.Fatalf("expected 204 read-all, got %d", st)
	}

	st, body = doReq(t, ts.URL, "GET", "/notifications/unread-count", ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 unread-count, got %d", st)
	}
	_ = json.Unmarshal(body, &count)
	if count.Unread != 0 {
		t.Fatalf("expected 0 unread after read-all, got %d", count.Unread)
	}
}

func TestHTTP_EmergencyPortal_FullFlow(t *testing.T) {
	ts := newTestServer(t)
	ownerID := seed.DemoUserID

	// el responder no necesita identidad
	st, body := doReq(t, ts.URL, "GET", "/emergency/"+seed.DemoEmergencyID, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 emergency start, got %d body=%s", st, string(body))
	}
	var start struct {
		SessionID string `json:"session_id"`
		Patient   struct {
			Name        string `json:"name"`
			DateOfBirth string `json:"date_of_birth"`
		} `json:"patient"`
	}
	if err := json.Unmarshal(body, &start); err != nil {
		t.Fatalf("unmarshal start: %v", err)
	}
	if start.Patient.Name != "Sarah Johnson" {
		t.Fatalf("expected patient confirmation, got %#v", start)
	}

	// link desconocido es terminal
	st, _ = doReq(t, ts.URL, "GET", "/emergency/em-unknown", "", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown link, got %d", st)
	}

	// attestation incompleta señala el campo
	st, body = doReq(t, ts.URL, "POST", "/emergency/"+seed.DemoEmergencyID+"/attest", "", map[string]any{
		"session_id":   start.SessionID,
		"name":         "J. Smith",
		"organization": "City EMS",
		"attested":     true,
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing badge, got %d body=%s", st, string(body))
	}
	var verr struct {
		Field string `json:"field"`
	}
	_ = json.Unmarshal(body, &verr)
	if verr.Field != "badge_id" {
		t.Fatalf("expected badge_id field error, got %q", verr.Field)
	}

	// attestation completa entrega el data pack
	st, body = doReq(t, ts.URL, "POST", "/emergency/"+seed.DemoEmergencyID+"/attest", "", map[string]any{
		"session_id":   start.SessionID,
		"name":         "J. Smith",
		"badge_id":     "EMT-4521",
		"organization": "City EMS",
		"attested":     true,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 attest, got %d body=%s", st, string(body))
	}
	var pack struct {
		PatientName string   `json:"patient_name"`
		BloodType   string   `json:"blood_type"`
		Allergies   []string `json:"allergies"`
	}
	if err := json.Unmarshal(body, &pack); err != nil {
		t.Fatalf("unmarshal pack: %v", err)
	}
	if pack.PatientName != "Sarah Johnson" || pack.BloodType != "B+" || len(pack.Allergies) != 3 {
		t.Fatalf("unexpected data pack: %#v", pack)
	}

	// la vista llega al audit log del owner por el canal del bridge
	deadline := time.Now().Add(2 * time.Second)
	for {
		st, body = doReq(t, ts.URL, "GET", "/audit?actor="+url.QueryEscape("J. Smith (Responder)"), ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 audit, got %d", st)
		}
		var entries []struct {
			EventType string `json:"event_type"`
			Resource  string `json:"resource"`
			Location  string `json:"location"`
		}
		_ = json.Unmarshal(body, &entries)
		if len(entries) == 1 {
			if entries[0].EventType != "EMERGENCY_ACCESS_VIEWED" || entries[0].Location != "City EMS" {
				t.Fatalf("unexpected emergency audit entry: %#v", entries[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("emergency audit entry never arrived")
		}
		time.Sleep(20 * time.Millisecond)
	}

	// y la notificación correspondiente
	st, body = doReq(t, ts.URL, "GET", "/notifications", ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 notifications, got %d", st)
	}
	var notifs []struct {
		Type   string `json:"type"`
		LinkTo string `json:"link_to"`
	}
	_ = json.Unmarshal(body, &notifs)
	found := false
	for _, n := range notifs {
		if n.Type == "EMERGENCY_ACCESS_VIEWED" && n.LinkTo == "audit" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected EMERGENCY_ACCESS_VIEWED notification, got %#v", notifs)
	}
}

func TestHTTP_EmergencyPack_ControlsDisclosure(t *testing.T) {
	ts := newTestServer(t)
	ownerID := seed.DemoUserID

	// el owner excluye medications y contacts del pack
	st, body := doReq(t, ts.URL, "PUT", "/me/emergency-pack", ownerID, map[string]any{
		"blood_type":         true,
		"allergies":          true,
		"medications":        false,
		"conditions":         true,
		"emergency_contacts": false,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 pack update, got %d body=%s", st, string(body))
	}

	// responder pasa el portal
	st, body = doReq(t, ts.URL, "GET", "/emergency/"+seed.DemoEmergencyID, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 start, got %d", st)
	}
	var start struct {
		SessionID string `json:"session_id"`
	}
	_ = json.Unmarshal(body, &start)

	st, body = doReq(t, ts.URL, "POST", "/emergency/"+seed.DemoEmergencyID+"/attest", "", map[string]any{
		"session_id":   start.SessionID,
		"name":         "J. Smith",
		"badge_id":     "EMT-4521",
		"organization": "City EMS",
		"attested":     true,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 attest, got %d body=%s", st, string(body))
	}

	// los campos excluidos ni aparecen en el JSON
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("unmarshal pack: %v", err)
	}
	if _, ok := raw["medications"]; ok {
		t.Fatalf("medications must not be serialized, body=%s", string(body))
	}
	if _, ok := raw["emergency_contacts"]; ok {
		t.Fatalf("emergency_contacts must not be serialized, body=%s", string(body))
	}
	if _, ok := raw["blood_type"]; !ok {
		t.Fatalf("blood_type should be present, body=%s", string(body))
	}
}

func TestHTTP_OwnerUpload_AndView(t *testing.T) {
	ts := newTestServer(t)
	ownerID := seed.DemoUserID

	st, body := doReq(t, ts.URL, "POST", "/records", ownerID, map[string]any{
		"name":     "Vaccination Record",
		"type":     "Immunization",
		"category": "Primary Care",
		"size":     "1.1 MB",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 upload, got %d body=%s", st, string(body))
	}
	var rec struct {
		ID       string `json:"id"`
		IPFSHash string `json:"ipfs_hash"`
	}
	_ = json.Unmarshal(body, &rec)
	if rec.ID == "" || rec.IPFSHash == "" {
		t.Fatalf("expected id and ipfs hash, body=%s", string(body))
	}

	st, _ = doReq(t, ts.URL, "POST", "/records/"+rec.ID+"/view", ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 view, got %d", st)
	}

	// upload + view quedan en el audit log
	st, body = doReq(t, ts.URL, "GET", "/audit", ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 audit, got %d", st)
	}
	var entries []struct {
		EventType string `json:"event_type"`
		Resource  string `json:"resource"`
	}
	_ = json.Unmarshal(body, &entries)
	up, seen := false, false
	for _, e := range entries {
		if e.Resource == "Vaccination Record" {
			if e.EventType == "DOCUMENT_UPLOADED" {
				up = true
			}
			if e.EventType == "DOCUMENT_VIEWED" {
				seen = true
			}
		}
	}
	if !up || !seen {
		t.Fatalf("expected upload+view audit entries, got %#v", entries)
	}
}

func hasEvent(entries []struct {
	EventType string `json:"event_type"`
	Actor     string `json:"actor"`
}, typ string) bool {
	for _, e := range entries {
		if e.EventType == typ {
			return true
		}
	}
	return false
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
