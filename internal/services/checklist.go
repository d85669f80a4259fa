// Package services orchestrates templates, extraction, sessions and the
// final write-back into one checklist workflow.
package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"ims/internal/config"
	"ims/internal/convert"
	"ims/internal/excel"
	"ims/internal/models"
	"ims/internal/snapshot"
)

var (
	// ErrTemplateNotFound is returned when a template folder does not exist
	// or holds no workbook.
	ErrTemplateNotFound = errors.New("template not found")
)

// Checklist wires the extraction and rewrite engines to the session store.
type Checklist struct {
	cfg    config.Config
	store  *models.Store
	parser *excel.Parser
	engine *excel.Engine
}

// NewChecklist builds the service from configuration.
func NewChecklist(cfg config.Config, store *models.Store) *Checklist {
	return &Checklist{
		cfg:    cfg,
		store:  store,
		parser: excel.NewParser(cfg.InputHeaders, cfg.CategoryFills),
		engine: excel.NewEngine(cfg.OutputDir),
	}
}

// Templates lists the template names available for new sessions. Each
// template is a subdirectory of the template dir; plain files are ignored.
func (c *Checklist) Templates() ([]string, error) {
	entries, err := os.ReadDir(c.cfg.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// StartSession opens the named template's current workbook, converting a
// legacy .xls first if needed, extracts the checklist tree, persists the
// interchange snapshot next to the workbook and registers a session.
func (c *Checklist) StartSession(template string, details models.Details) (*models.Session, []excel.Warning, error) {
	if err := details.Validate(); err != nil {
		return nil, nil, err
	}
	workbookPath, err := c.resolveWorkbook(template)
	if err != nil {
		return nil, nil, err
	}
	if strings.EqualFold(filepath.Ext(workbookPath), ".xls") {
		converted, err := convert.File(workbookPath, "")
		if err != nil {
			return nil, nil, fmt.Errorf("convert legacy workbook: %w", err)
		}
		workbookPath = converted
	}

	f, err := excelize.OpenFile(workbookPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets, warnings, err := c.parser.ParseWorkbook(f)
	if err != nil {
		return nil, nil, err
	}
	for _, warning := range warnings {
		log.Printf("extraction warning: %s", warning)
	}

	snapshotPath := snapshot.Path(workbookPath)
	if err := snapshot.Save(snapshotPath, sheets); err != nil {
		return nil, nil, err
	}
	// The session works from the validated interchange form, not the raw
	// parse result.
	sheets, err = snapshot.Load(snapshotPath)
	if err != nil {
		return nil, nil, err
	}

	session, err := c.store.Create(workbookPath, snapshotPath, sheets, details)
	if err != nil {
		return nil, nil, err
	}
	return session, warnings, nil
}

// Fill records a status against one task in the session tree.
func (c *Checklist) Fill(token string, sheet, category, task int, status string) error {
	return c.store.FillTask(token, sheet, category, task, status)
}

// Progress reports filled and total task counts for a session.
func (c *Checklist) Progress(token string) (int, int, error) {
	return c.store.Progress(token)
}

// Complete writes the session's recorded input back into the workbook,
// saves it under the derived filename, deletes the interchange snapshot
// and closes the session. It returns the saved workbook's path.
func (c *Checklist) Complete(token string) (string, error) {
	session, ok := c.store.Get(token)
	if !ok {
		return "", models.ErrSessionNotFound
	}
	if err := os.MkdirAll(c.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	outputPath, err := c.engine.Rewrite(session.WorkbookPath, session.Sheets, session.Details)
	if err != nil {
		return "", err
	}
	if err := snapshot.Remove(session.SnapshotPath); err != nil {
		log.Printf("snapshot cleanup: %v", err)
	}
	c.store.Remove(token)
	return outputPath, nil
}

// resolveWorkbook picks the template's current workbook: the most recently
// modified .xlsx or .xls file directly inside the template folder.
func (c *Checklist) resolveWorkbook(template string) (string, error) {
	dir := filepath.Join(c.cfg.TemplateDir, template)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, template)
	}
	best := ""
	var bestMod int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".xlsx" && ext != ".xls" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().UnixNano() > bestMod {
			best = filepath.Join(dir, entry.Name())
			bestMod = info.ModTime().UnixNano()
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: no workbook in %s", ErrTemplateNotFound, dir)
	}
	return best, nil
}
