package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"ims/internal/config"
	"ims/internal/models"
	"ims/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	templateDir := t.TempDir()
	writeTemplateWorkbook(t, templateDir)

	cfg := config.Config{
		TemplateDir:   templateDir,
		OutputDir:     t.TempDir(),
		SessionTTL:    config.Duration{Duration: time.Hour},
		InputHeaders:  []string{"Date Inspected by who?", "OK"},
		CategoryFills: []string{"FFFF00"},
	}
	checklist := services.NewChecklist(cfg, models.NewStore(time.Hour))
	return NewRouter(&Server{Checklist: checklist})
}

func writeTemplateWorkbook(t *testing.T, dir string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		t.Fatalf("bold style: %v", err)
	}
	category, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}},
	})
	if err != nil {
		t.Fatalf("category style: %v", err)
	}

	for coord, value := range map[string]string{
		"B1":  "Date Inspected by who?",
		"C1":  "OK",
		"A9":  "Fire Safety",
		"A10": "Check extinguisher",
	} {
		if err := f.SetCellValue(sheet, coord, value); err != nil {
			t.Fatalf("set %s: %v", coord, err)
		}
	}
	if err := f.SetCellStyle(sheet, "A9", "A9", category); err != nil {
		t.Fatalf("style A9: %v", err)
	}
	if err := f.SetCellStyle(sheet, "A10", "A10", bold); err != nil {
		t.Fatalf("style A10: %v", err)
	}

	folder := filepath.Join(dir, "Fire Panel")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatalf("mkdir template: %v", err)
	}
	if err := f.SaveAs(filepath.Join(folder, "Fire Panel 12 JAN 24.xlsx")); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestListTemplates(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/v1/templates", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload struct {
		Templates []string `json:"templates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Templates) != 1 || payload.Templates[0] != "Fire Panel" {
		t.Fatalf("unexpected templates: %v", payload.Templates)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{
		"template": "Fire Panel", "initials": "A", "day": 15, "period": "JAN", "year": 24,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad initials, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{
		"template": "Boiler Room", "initials": "AB", "day": 15, "period": "JAN", "year": 24,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown template, got %d", w.Code)
	}
}

func TestSessionFlow(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{
		"template": "Fire Panel", "initials": "AB", "day": 15, "period": "JAN", "year": 24,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if created.Token == "" || created.Total != 1 || created.Filled != 0 {
		t.Fatalf("unexpected session payload: %+v", created)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+created.Token+"/fill", fillRequest{Status: models.StatusOK})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var progress struct {
		Filled int `json:"filled"`
		Total  int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &progress); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if progress.Filled != 1 || progress.Total != 1 {
		t.Fatalf("expected 1/1, got %+v", progress)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+created.Token+"/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var completed struct {
		OutputPath string `json:"output_path"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &completed); err != nil {
		t.Fatalf("decode completion: %v", err)
	}
	if _, err := os.Stat(completed.OutputPath); err != nil {
		t.Fatalf("expected output workbook: %v", err)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+created.Token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after completion, got %d", w.Code)
	}
}

func TestFillUnknownSession(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/ghost/fill", fillRequest{Status: models.StatusOK})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
