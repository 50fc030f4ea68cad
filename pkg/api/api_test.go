package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"bitfeistel/pkg/analysis"
	"bitfeistel/pkg/store"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApi(t *testing.T, withStore bool) *Api {
	t.Helper()
	var st *store.Store
	if withStore {
		var err error
		st, err = store.Open(filepath.Join(t.TempDir(), "api.db"))
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
	}
	opts := analysis.DefaultOptions()
	opts.SeedBits = 4
	opts.Iterations = 3
	opts.CollisionKeys = 20
	opts.DiffusionTrials = 5
	opts.ConfusionTrials = 5
	opts.CompressBlocks = 16
	opts.Workers = 2
	return NewApi(st, opts)
}

func do(t *testing.T, a *Api, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestGen(t *testing.T) {
	a := newTestApi(t, false)
	rec := do(t, a, http.MethodPost, "/gen", `{"seed":"0xb72a"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp KeyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1011011100101010010010110001000001001011000101111010101011000000", resp.Key)
	assert.Equal(t, 64, resp.Bits)
	assert.Equal(t, 16, resp.Rounds)
	assert.Len(t, resp.Fingerprint, 16)
}

func TestGenPassphrase(t *testing.T) {
	a := newTestApi(t, false)
	rec := do(t, a, http.MethodPost, "/gen", `{"passphrase":"hunter2","seed_bits":8}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp KeyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 32, resp.Bits)
}

func TestGenErrors(t *testing.T) {
	a := newTestApi(t, false)
	for _, body := range []string{
		`{}`,
		`{"seed":"101"}`,
		`{"seed":"10x1"}`,
		`{"seed":"0xb72a","key":"0xb72a"}`,
	} {
		rec := do(t, a, http.MethodPost, "/gen", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestEncDec(t *testing.T) {
	a := newTestApi(t, false)
	rec := do(t, a, http.MethodPost, "/enc", `{"seed":"0xb72a","data":"0x0123456789abcdef"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var enc CryptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enc))
	assert.Equal(t, "72d0163bd28b4211", enc.Hex)

	key := "1011011100101010010010110001000001001011000101111010101011000000"
	rec = do(t, a, http.MethodPost, "/dec", `{"key":"`+key+`","data":"`+enc.Bits+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dec CryptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dec))
	assert.Equal(t, "0123456789abcdef", dec.Hex)
}

func TestEncWrongLength(t *testing.T) {
	a := newTestApi(t, false)
	rec := do(t, a, http.MethodPost, "/enc", `{"seed":"0xb72a","data":"0x0123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPerm(t *testing.T) {
	a := newTestApi(t, false)
	rec := do(t, a, http.MethodGet, "/perm/8", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p PermResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, []int{5, 2, 7, 4, 1, 6, 3, 0}, p.Forward)
	assert.Len(t, p.Inverse, 8)

	rec = do(t, a, http.MethodGet, "/perm/8?format=dot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "digraph")

	assert.Equal(t, http.StatusBadRequest, do(t, a, http.MethodGet, "/perm/26", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, a, http.MethodGet, "/perm/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, a, http.MethodGet, "/perm/8?format=png", "").Code)
}

func TestAnalyzeAndReports(t *testing.T) {
	a := newTestApi(t, true)
	rec := do(t, a, http.MethodPost, "/analyze", `{"iterations":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var r analysis.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.True(t, r.Correct)
	assert.Equal(t, 16, r.BlockBits)
	assert.Equal(t, 2, r.Timing.Iterations)

	rec = do(t, a, http.MethodGet, "/reports", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []analysis.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, r.ID, list[0].ID)

	rec = do(t, a, http.MethodGet, "/reports/"+r.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, a, http.MethodGet, "/reports/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeRejectsUnusableSeed(t *testing.T) {
	a := newTestApi(t, false)
	rec := do(t, a, http.MethodPost, "/analyze", `{"seed_bits":13}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
