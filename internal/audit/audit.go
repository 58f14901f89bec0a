package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Auditor writes committed sync transactions to disk as JSON files.
type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveJSON writes data to <timestamp>-<uuid>.json so that files sort by
// creation time.
func (a *Auditor) SaveJSON(data any) (string, error) {
	if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audit directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.json", time.Now().UTC().Format("20060102T150405Z"), uuid.New().String())
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	log.Debug().Str("path", path).Msg("saved audit file")
	return filename, nil
}

// List returns the audit filenames, newest first.
func (a *Auditor) List() ([]string, error) {
	entries, err := os.ReadDir(a.AuditDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audit directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}
