package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"slidecraft/internal/model"
	"slidecraft/internal/service/assembler"
	"slidecraft/internal/service/session"
	"slidecraft/internal/service/templates"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	m, err := session.NewManager(nil, zerolog.Nop())
	require.NoError(t, err)
	s, err := m.Create("demo")
	require.NoError(t, err)

	s.AppendProduct(model.ProductData{
		Name:       "Atlas",
		Category:   "Platform",
		Status:     "launched",
		Summary:    "GA in all regions",
		Highlights: []string{"SSO", "Audit log"},
		Metrics:    []model.Metric{{Label: "MAU", Value: "12k"}},
	})
	s.AppendProduct(model.ProductData{Name: "Beacon", Status: "beta"})
	s.AppendPipeline(model.SlideEntry{Title: "Compass", Owner: "Ops", TargetDate: "Q3", Bullets: []string{"design"}})
	s.SetShowPipeline(true)
	return s
}

// recordingSerializer 记录收到的文档，输出 JSON
type recordingSerializer struct {
	mu   sync.Mutex
	docs []*model.AssembledDocument
	err  error
}

func (r *recordingSerializer) Format() Format      { return FormatPPTX }
func (r *recordingSerializer) Extension() string   { return "pptx" }
func (r *recordingSerializer) ContentType() string { return "application/json" }
func (r *recordingSerializer) Serialize(doc *model.AssembledDocument) ([]byte, error) {
	r.mu.Lock()
	r.docs = append(r.docs, doc)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return json.Marshal(doc)
}

// blockingSink 在 Write 中阻塞，直到 release 被关闭
type blockingSink struct {
	entered chan struct{}
	release chan struct{}
	got     []Artifact
}

func newBlockingSink() *blockingSink {
	return &blockingSink{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingSink) Write(_ context.Context, a Artifact) (Delivery, error) {
	b.entered <- struct{}{}
	<-b.release
	b.got = append(b.got, a)
	return Delivery{FileName: a.FileName, Size: int64(len(a.Data))}, nil
}

type failingSink struct{}

func (failingSink) Write(context.Context, Artifact) (Delivery, error) {
	return Delivery{}, errors.New("disk full")
}

func TestExportWritesPPTXFile(t *testing.T) {
	s := newTestSession(t)
	dir := t.TempDir()
	ex := New(templates.Default(), nil, NewFileSink(dir), nil)

	var events []ProgressEvent
	res, err := ex.Export(context.Background(), s, ExportOptions{
		Format:   FormatPPTX,
		Progress: func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	assert.Equal(t, "monthly-progress-report-may-2025.pptx", res.Delivery.FileName)
	assert.Equal(t, 4, res.SlideCount)

	data, err := os.ReadFile(res.Delivery.Path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
	assert.Equal(t, int64(len(data)), res.Delivery.Size)

	require.NotEmpty(t, events)
	assert.Equal(t, 100, events[len(events)-1].Percent)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Percent, events[i-1].Percent)
	}
}

func TestSerializersProduceReadableFiles(t *testing.T) {
	s := newTestSession(t)
	doc, err := New(templates.Default(), nil, nil, nil).Preview(s)
	require.NoError(t, err)

	pdf, err := NewPDFSerializer().Serialize(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	raw, err := NewXLSXSerializer().Serialize(doc)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetSlides)
	require.NoError(t, err)
	assert.Len(t, rows, len(doc.Slides)+1)
	assert.Equal(t, "Atlas", rows[2][2])

	metrics, err := f.GetRows(sheetMetrics)
	require.NoError(t, err)
	// 表头 + Atlas 的 MAU + Compass 的 Owner/Target
	assert.Len(t, metrics, 4)
}

func TestSerializersRejectEmptyDocument(t *testing.T) {
	for _, ser := range DefaultSerializers() {
		_, err := ser.Serialize(&model.AssembledDocument{})
		assert.Error(t, err, ser.Format())
	}
}

func TestExportUsesSnapshotTakenBeforeSuspend(t *testing.T) {
	s := newTestSession(t)
	rec := &recordingSerializer{}
	sink := newBlockingSink()
	ex := New(templates.Default(), NewSerializers(rec), sink, nil)

	done := make(chan error, 1)
	go func() {
		_, err := ex.Export(context.Background(), s, ExportOptions{Format: FormatPPTX})
		done <- err
	}()

	select {
	case <-sink.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("export never reached the sink")
	}

	title := "Changed mid-export"
	s.UpdateProject(model.ProjectPatch{Title: &title})
	s.AppendProduct(model.ProductData{Name: "Late"})
	s.SetShowPipeline(false)

	close(sink.release)
	require.NoError(t, <-done)

	require.Len(t, rec.docs, 1)
	doc := rec.docs[0]
	assert.Equal(t, "Monthly Progress Report", doc.Title)
	assert.Equal(t, 2, doc.CountKind(model.SlideProduct))
	assert.Equal(t, 1, doc.CountKind(model.SlidePipeline))

	var written model.AssembledDocument
	require.NoError(t, json.Unmarshal(sink.got[0].Data, &written))
	assert.Equal(t, doc.Title, written.Title)
	assert.Len(t, written.Slides, 4)
}

func TestExportRejectsConcurrentExport(t *testing.T) {
	s := newTestSession(t)
	sink := newBlockingSink()
	ex := New(templates.Default(), NewSerializers(&recordingSerializer{}), sink, nil)

	done := make(chan error, 1)
	go func() {
		_, err := ex.Export(context.Background(), s, ExportOptions{})
		done <- err
	}()
	<-sink.entered

	_, err := ex.Export(context.Background(), s, ExportOptions{})
	assert.ErrorIs(t, err, ErrExportInProgress)
	_, err = ex.Publish(context.Background(), s)
	assert.Error(t, err)

	close(sink.release)
	require.NoError(t, <-done)

	// 槽位已释放
	sink2 := newBlockingSink()
	close(sink2.release)
	ex2 := New(templates.Default(), NewSerializers(&recordingSerializer{}), sink2, nil)
	_, err = ex2.Export(context.Background(), s, ExportOptions{})
	assert.NoError(t, err)
}

func TestExportFailureLeavesSessionUntouched(t *testing.T) {
	cases := []struct {
		name  string
		ser   Serializer
		sink  Sink
		check func(t *testing.T, err error)
	}{
		{
			name: "sink",
			ser:  &recordingSerializer{},
			sink: failingSink{},
			check: func(t *testing.T, err error) {
				assert.True(t, IsSinkError(err))
			},
		},
		{
			name: "serializer",
			ser:  &recordingSerializer{err: errors.New("boom")},
			sink: NewFileSink(t.TempDir()),
			check: func(t *testing.T, err error) {
				assert.False(t, IsSinkError(err))
				assert.ErrorContains(t, err, "boom")
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(t)
			s.GoTo(4)
			before := s.Snapshot()

			_, err := New(templates.Default(), NewSerializers(tc.ser), tc.sink, nil).
				Export(context.Background(), s, ExportOptions{})
			require.Error(t, err)
			tc.check(t, err)

			assert.Equal(t, before, s.Snapshot())
			assert.Equal(t, 4, s.Wizard().Current)
		})
	}
}

func TestExportMissingTitleIsValidationError(t *testing.T) {
	s := newTestSession(t)
	blank := "   "
	s.UpdateProject(model.ProjectPatch{Title: &blank})
	dir := t.TempDir()

	_, err := New(templates.Default(), nil, NewFileSink(dir), nil).
		Export(context.Background(), s, ExportOptions{Format: FormatPDF})
	require.Error(t, err)
	assert.True(t, assembler.IsValidation(err))
	assert.ErrorIs(t, err, assembler.ErrMissingTitle)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestExportUnknownFormat(t *testing.T) {
	s := newTestSession(t)
	_, err := New(templates.Default(), nil, NewFileSink(t.TempDir()), nil).
		Export(context.Background(), s, ExportOptions{Format: "key"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestPublishSendsRawInputs(t *testing.T) {
	var got RemotePayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"deck-1","url":"https://slides.example/deck-1"}`))
	}))
	defer srv.Close()

	s := newTestSession(t)
	ex := New(templates.Default(), nil, nil, NewHTTPRemoteSink(srv.URL, "secret", time.Second))

	res, err := ex.Publish(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "deck-1", res.Receipt.ID)
	assert.Equal(t, http.StatusOK, res.Receipt.Status)
	assert.Equal(t, s.ID(), got.SessionID)
	assert.Len(t, got.Products, 2)
	assert.Len(t, got.Pipeline, 1)
	assert.True(t, got.ShowPipeline)
	assert.Equal(t, "corporate", got.Template.ID)
}

func TestPublishRemoteFailureIsSinkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newTestSession(t)
	before := s.Snapshot()
	_, err := New(templates.Default(), nil, nil, NewHTTPRemoteSink(srv.URL, "", time.Second)).
		Publish(context.Background(), s)
	require.Error(t, err)
	assert.True(t, IsSinkError(err))
	assert.Equal(t, before, s.Snapshot())
}

func TestRemoteErrorMessageKeepsWholeRunes(t *testing.T) {
	body := strings.Repeat("服", 300)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	_, err := NewHTTPRemoteSink(srv.URL, "", time.Second).Publish(context.Background(), RemotePayload{SessionID: "s_1"})
	require.Error(t, err)
	assert.True(t, utf8.ValidString(err.Error()))
	assert.Contains(t, err.Error(), strings.Repeat("服", 200))
	assert.NotContains(t, err.Error(), strings.Repeat("服", 201))
}

func TestPublishDisabled(t *testing.T) {
	s := newTestSession(t)

	_, err := New(templates.Default(), nil, nil, nil).Publish(context.Background(), s)
	assert.ErrorIs(t, err, ErrRemoteDisabled)

	_, err = New(templates.Default(), nil, nil, NewHTTPRemoteSink("", "", 0)).Publish(context.Background(), s)
	assert.ErrorIs(t, err, ErrRemoteDisabled)
	assert.False(t, IsSinkError(err))
}

func TestBuildFileName(t *testing.T) {
	cases := []struct {
		settings model.ProjectSettings
		want     string
	}{
		{model.DefaultProjectSettings(), "monthly-progress-report-may-2025.pptx"},
		{model.ProjectSettings{Title: "  Q3 / Review!! ", Month: "June"}, "q3-review-june.pptx"},
		{model.ProjectSettings{Title: "月度 汇报", Year: "2025"}, "月度-汇报-2025.pptx"},
		{model.ProjectSettings{Title: "***"}, "presentation.pptx"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, buildFileName(tc.settings, "pptx"))
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPPTX, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFileSinkKeepsNamesInsideRoot(t *testing.T) {
	root := t.TempDir()
	d, err := NewFileSink(root).Write(context.Background(), Artifact{
		SessionID: "../escape",
		FileName:  "../../deck.pptx",
		Data:      []byte("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "deck.pptx", d.FileName)
	assert.FileExists(t, d.Path)
	assert.Contains(t, d.Path, root)
	assert.NoFileExists(t, d.Path+".tmp")
}

func TestFileSinkSeparatesRepeatedWrites(t *testing.T) {
	sink := NewFileSink(t.TempDir())
	a := Artifact{SessionID: "s_1", FileName: "deck.xlsx", Data: []byte("first")}
	d1, err := sink.Write(context.Background(), a)
	require.NoError(t, err)
	a.Data = []byte("second")
	d2, err := sink.Write(context.Background(), a)
	require.NoError(t, err)

	assert.NotEqual(t, d1.Path, d2.Path)
	assert.Equal(t, d1.FileName, d2.FileName)

	got, err := os.ReadFile(d1.Path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))

	require.NoError(t, RemoveDelivered(d2.Path))
	assert.NoFileExists(t, d2.Path)
	assert.NoDirExists(t, filepath.Dir(d2.Path))
	assert.FileExists(t, d1.Path)
}

func TestParseHexColor(t *testing.T) {
	assert.Equal(t, rgb{R: 0x1E, G: 0x40, B: 0xAF}, parseHexColor("#1e40af"))
	assert.Equal(t, rgb{R: 0xFF, G: 0xAA, B: 0x00}, parseHexColor("fa0"))
	assert.Equal(t, fallbackColor, parseHexColor("nope"))
	assert.Equal(t, "FF1E40AF", parseHexColor("#1E40AF").argb())
}
