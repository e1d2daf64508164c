package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"contactdash/internal/docstore"
	"contactdash/internal/fields"
	"contactdash/internal/handler"
	"contactdash/internal/semantic"
	"contactdash/internal/server"
	"contactdash/internal/wizard"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := docstore.NewMemoryStore()
	fieldSvc := fields.New(store)
	wizardSvc := wizard.New(store, fieldSvc, semantic.NewPredictor(&semantic.FakeClient{}), nil)

	mux := server.NewMux(handler.NewImportHandler(wizardSvc), handler.NewFieldHandler(fieldSvc))
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func uploadCSV(t *testing.T, ts *httptest.Server, csv string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("company_id", "acme"))
	fw, err := mw.CreateFormFile("file", "contacts.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/v1/imports", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func TestImportFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	started := uploadCSV(t, ts, "First Name,Last Name,Email,Mobile\nAda,Lovelace,ada@example.com,0123456789\n")
	jobID, _ := started["jobId"].(string)
	require.NotEmpty(t, jobID)
	require.Equal(t, float64(1), started["rowCount"])
	require.Len(t, started["entries"], 4)

	resp, err := http.Get(ts.URL + "/v1/imports/validate?job_id=" + jobID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var validation struct {
		IsValid bool `json:"isValid"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&validation))
	require.True(t, validation.IsValid)

	commit := postJSON(t, ts, "/v1/imports/commit", map[string]any{"jobId": jobID, "actor": "ops@acme.test"})
	defer commit.Body.Close()
	require.Equal(t, http.StatusOK, commit.StatusCode)
	var summary struct {
		Created int `json:"created"`
	}
	require.NoError(t, json.NewDecoder(commit.Body).Decode(&summary))
	require.Equal(t, 1, summary.Created)

	again := postJSON(t, ts, "/v1/imports/commit", map[string]any{"jobId": jobID, "actor": "ops@acme.test"})
	defer again.Body.Close()
	require.Equal(t, http.StatusConflict, again.StatusCode)
}

func TestRemapColumnOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	started := uploadCSV(t, ts, "First Name,Last Name,Email,Contact\nAda,Lovelace,ada@example.com,0123456789\n")
	jobID := started["jobId"].(string)

	blocked := postJSON(t, ts, "/v1/imports/commit", map[string]any{"jobId": jobID})
	defer blocked.Body.Close()
	require.Equal(t, http.StatusBadRequest, blocked.StatusCode)

	sel := postJSON(t, ts, "/v1/imports/select-field", map[string]any{"jobId": jobID, "index": 3, "fieldId": "phone"})
	defer sel.Body.Close()
	require.Equal(t, http.StatusOK, sel.StatusCode)

	commit := postJSON(t, ts, "/v1/imports/commit", map[string]any{"jobId": jobID, "actor": "ops@acme.test"})
	defer commit.Body.Close()
	require.Equal(t, http.StatusOK, commit.StatusCode)
}

func TestMappingRequiresKnownJob(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/imports/mapping?job_id=import-0")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	missing, err := http.Get(ts.URL + "/v1/imports/mapping")
	require.NoError(t, err)
	defer missing.Body.Close()
	require.Equal(t, http.StatusBadRequest, missing.StatusCode)
}

func TestFieldEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/fields?company_id=acme")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		Fields []struct {
			ID   string `json:"id"`
			Core bool   `json:"core"`
		} `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed.Fields, 4)

	created := postJSON(t, ts, "/v1/fields", map[string]any{"companyId": "acme", "label": "Budget", "type": "number"})
	defer created.Body.Close()
	require.Equal(t, http.StatusOK, created.StatusCode)
	var field struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(created.Body).Decode(&field))
	require.NotEmpty(t, field.ID)

	dup := postJSON(t, ts, "/v1/fields", map[string]any{"companyId": "acme", "label": "budget"})
	defer dup.Body.Close()
	require.Equal(t, http.StatusConflict, dup.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/fields?company_id=acme&field_id="+field.ID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()
	require.Equal(t, http.StatusOK, del.StatusCode)

	coreReq, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/fields?company_id=acme&field_id=email", nil)
	require.NoError(t, err)
	coreDel, err := http.DefaultClient.Do(coreReq)
	require.NoError(t, err)
	defer coreDel.Body.Close()
	require.Equal(t, http.StatusBadRequest, coreDel.StatusCode)
}

func TestProgressWSRequiresJob(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/imports/progress?job_id=import-0")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/fields", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	require.True(t, strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "DELETE"))
}
