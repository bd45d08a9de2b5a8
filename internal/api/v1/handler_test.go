package v1

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"slidecraft/internal/exporter"
	"slidecraft/internal/model"
	"slidecraft/internal/service/session"
	"slidecraft/internal/service/templates"
	"slidecraft/internal/store"
)

type testEnv struct {
	router  *gin.Engine
	handler *Handler
	store   *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.New(filepath.Join(t.TempDir(), "slidecraft.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	mgr, err := session.NewManager(nil, zerolog.Nop())
	require.NoError(t, err)

	reg := templates.Default()
	h := NewHandler(Options{
		Sessions:  mgr,
		Templates: reg,
		Exporter:  exporter.New(reg, nil, exporter.NewFileSink(t.TempDir()), nil),
		Store:     st,
	})

	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return &testEnv{router: r, handler: h, store: st}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/sessions", map[string]string{"name": "demo"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[SessionDetail](t, w).ID
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	d := decode[SessionDetail](t, w)
	assert.Equal(t, "demo", d.Name)
	assert.Equal(t, model.DefaultProjectSettings(), d.Project)
	assert.Equal(t, "corporate", d.Template.ID)
	assert.Equal(t, id, env.store.GetLastActiveSession())

	w = env.do(t, http.MethodPatch, "/api/sessions/"+id, map[string]string{"name": "renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "renamed", decode[session.Summary](t, w).Name)

	w = env.do(t, http.MethodGet, "/api/sessions", nil)
	list := decode[struct {
		Sessions []session.Summary `json:"sessions"`
	}](t, w)
	require.Len(t, list.Sessions, 1)

	w = env.do(t, http.MethodDelete, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectPatchMergesFields(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPatch, "/api/sessions/"+id+"/project", map[string]string{"title": "Q2 Review"})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[model.ProjectSettings](t, w)
	assert.Equal(t, "Q2 Review", got.Title)
	assert.Equal(t, "May", got.Month)
	assert.Equal(t, "corporate", got.TemplateID)

	w = env.do(t, http.MethodPatch, "/api/sessions/"+id+"/project", map[string]string{"templateId": "nope"})
	require.Equal(t, http.StatusOK, w.Code)

	// 未知模板在读取时回退
	w = env.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, "corporate", decode[SessionDetail](t, w).Template.ID)
}

func TestWizardNavigationClamps(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	base := "/api/sessions/" + id + "/wizard"

	w := env.do(t, http.MethodPost, base+"/previous", nil)
	assert.EqualValues(t, 0, decode[map[string]interface{}](t, w)["current"])

	w = env.do(t, http.MethodPost, base+"/goto", map[string]int{"index": 99})
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[map[string]interface{}](t, w)
	assert.EqualValues(t, model.StepCount-1, state["current"])
	assert.Equal(t, true, state["isLast"])

	w = env.do(t, http.MethodPost, base+"/next", nil)
	assert.EqualValues(t, model.StepCount-1, decode[map[string]interface{}](t, w)["current"])

	w = env.do(t, http.MethodPost, base+"/goto", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContentEndpoints(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	base := "/api/sessions/" + id

	for _, n := range []string{"a", "b", "c"} {
		w := env.do(t, http.MethodPost, base+"/products", model.ProductData{Name: n})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(t, http.MethodPost, base+"/products/move", map[string]int{"from": 2, "to": 0})
	require.Equal(t, http.StatusOK, w.Code)
	products := decode[struct {
		Products []model.ProductData `json:"products"`
	}](t, w).Products
	require.Len(t, products, 3)
	assert.Equal(t, "c", products[0].Name)

	w = env.do(t, http.MethodPut, base+"/products/1", model.ProductData{Name: "A"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, base+"/products/7", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, base+"/products/move", map[string]int{"from": 0, "to": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, base+"/pipeline/3", model.SlideEntry{Title: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, base+"/products/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, base+"/pipeline", model.SlideEntry{Title: "next"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.do(t, http.MethodPut, base+"/pipeline/visibility", map[string]bool{"show": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]interface{}](t, w)["showPipeline"])

	w = env.do(t, http.MethodGet, base+"/preview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := decode[model.AssembledDocument](t, w)
	assert.Len(t, doc.Slides, 5)
	assert.Equal(t, 1, doc.CountKind(model.SlidePipeline))

	w = env.do(t, http.MethodPost, base+"/wizard/start-new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	d := decode[SessionDetail](t, w)
	assert.Empty(t, d.Products)
	assert.Empty(t, d.Pipeline)
	assert.Equal(t, 0, d.Wizard.Current)
}

func TestPreviewMissingTitleIs422(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	env.do(t, http.MethodPatch, "/api/sessions/"+id+"/project", map[string]string{"title": "  "})
	w := env.do(t, http.MethodGet, "/api/sessions/"+id+"/preview", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/export", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodGet, "/api/sessions/"+id+"/exports", nil)
	logs := decode[struct {
		Exports []store.ExportLog `json:"exports"`
	}](t, w).Exports
	require.Len(t, logs, 1)
	assert.Equal(t, store.ExportStatusFailed, logs[0].Status)
}

func TestExportAndDownloadOnce(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	env.do(t, http.MethodPost, "/api/sessions/"+id+"/products", model.ProductData{Name: "Atlas"})

	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/export", map[string]string{"format": "pptx"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[ExportResponse](t, w)
	assert.Equal(t, 2, res.SlideCount)
	require.True(t, strings.HasPrefix(res.DownloadURL, "/api/export/download/"))

	w = env.do(t, http.MethodGet, res.DownloadURL, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "monthly-progress-report-may-2025.pptx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = env.do(t, http.MethodGet, res.DownloadURL, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/sessions/"+id+"/exports", nil)
	logs := decode[struct {
		Exports []store.ExportLog `json:"exports"`
	}](t, w).Exports
	require.Len(t, logs, 1)
	assert.Equal(t, "pptx", logs[0].Format)
	assert.Equal(t, store.ExportStatusSuccess, logs[0].Status)
}

func TestRepeatedExportsKeepTheirOwnFiles(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	base := "/api/sessions/" + id
	env.do(t, http.MethodPost, base+"/products", model.ProductData{Name: "Atlas"})

	w := env.do(t, http.MethodPost, base+"/export", map[string]string{"format": "xlsx"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[ExportResponse](t, w)

	env.do(t, http.MethodPost, base+"/products", model.ProductData{Name: "Beacon"})
	w = env.do(t, http.MethodPost, base+"/export", map[string]string{"format": "xlsx"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decode[ExportResponse](t, w)

	assert.Equal(t, first.Delivery.FileName, second.Delivery.FileName)

	slideRows := func(url string) int {
		w := env.do(t, http.MethodGet, url, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Slides")
		require.NoError(t, err)
		return len(rows)
	}

	// 后一次导出先下载，不影响前一次的链接
	assert.Equal(t, 1+3, slideRows(second.DownloadURL))
	assert.Equal(t, 1+2, slideRows(first.DownloadURL))
}

func TestExportUnknownFormat(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/export?format=key", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportStreamSendsDoneEvent(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/export/stream", map[string]string{"format": "xlsx"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, `"type":"start"`)
	assert.Contains(t, body, `"type":"progress"`)
	assert.Contains(t, body, `"type":"done"`)
	assert.Contains(t, body, "/api/export/download/")
	assert.Equal(t, 1, env.handler.downloads.len())
}

func TestPublishWithoutRemoteIs503(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/publish", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestImportWorkbook(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)
	env.do(t, http.MethodPost, "/api/sessions/"+id+"/products", model.ProductData{Name: "existing"})

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Products"))
	require.NoError(t, f.SetSheetRow("Products", "A1", &[]interface{}{"name", "metrics"}))
	require.NoError(t, f.SetSheetRow("Products", "A2", &[]interface{}{"Atlas", "MAU=12k"}))
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)
	_ = f.Close()

	upload := func(mode string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", "content.xlsx")
		require.NoError(t, err)
		_, _ = fw.Write(xlsx.Bytes())
		require.NoError(t, mw.WriteField("mode", mode))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		return w
	}

	w := upload("append")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[ImportResponse](t, w)
	assert.Equal(t, 1, res.Products)
	assert.Equal(t, 2, res.ProductTotal)

	w = upload("replace")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[ImportResponse](t, w).ProductTotal)

	w = upload("merge")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/sessions/"+id+"/imports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	imports := decode[struct {
		Imports []store.ImportLog `json:"imports"`
	}](t, w).Imports
	require.Len(t, imports, 2)
	assert.Equal(t, "replace", imports[0].Mode)
	assert.Equal(t, "content.xlsx", imports[0].Filename)
}

func TestStatusAndTemplates(t *testing.T) {
	env := newTestEnv(t)
	env.createSession(t)

	w := env.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[StatusResponse](t, w)
	assert.Equal(t, 1, st.SessionCount)
	assert.True(t, st.Persistent)
	assert.Equal(t, exporter.FormatPPTX, st.DefaultFormat)
	assert.Len(t, st.Formats, 3)
	assert.Equal(t, []string{"Template", "Setup", "Content", "Preview", "Export"}, st.Steps)

	w = env.do(t, http.MethodGet, "/api/templates", nil)
	tpls := decode[struct {
		Templates []model.TemplateStyle `json:"templates"`
	}](t, w).Templates
	assert.Len(t, tpls, 4)
}

func TestBuildContentDisposition(t *testing.T) {
	got := buildContentDisposition("月度汇报-may-2025.pptx")
	assert.Equal(t,
		"attachment; filename=\"-may-2025.pptx\"; filename*=UTF-8''%E6%9C%88%E5%BA%A6%E6%B1%87%E6%8A%A5-may-2025.pptx",
		got)

	got = buildContentDisposition("报告.pdf")
	assert.True(t, strings.HasPrefix(got, "attachment; filename=\"presentation.pdf\""))
}

func TestDownloadStoreExpires(t *testing.T) {
	s := newExportDownloadStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	token := s.put(exporter.Delivery{FileName: "a.pptx"}, time.Minute)
	now = now.Add(2 * time.Minute)

	_, ok := s.take(token)
	assert.False(t, ok)
	assert.Equal(t, 0, s.len())
}
