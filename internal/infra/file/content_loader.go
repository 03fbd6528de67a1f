package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dictation-trainer/internal/domain"
)

// ContentLoader reads exercises from a content directory:
//
//	<dir>/index.json            [{"id": "1", "name": "Test 1"}, ...]
//	<dir>/transcripts/<id>.json [{"id", "label", "startTime", "endTime", "transcript"}, ...]
type ContentLoader struct {
	dir string
}

func NewContentLoader(dir string) *ContentLoader {
	return &ContentLoader{dir: dir}
}

func (l *ContentLoader) LoadCatalog(_ context.Context) ([]domain.CatalogEntry, error) {
	var entries []domain.CatalogEntry
	if err := readJSON(filepath.Join(l.dir, "index.json"), &entries); err != nil {
		return nil, fmt.Errorf("%w: catalog: %v", domain.ErrContentLoad, err)
	}
	return entries, nil
}

func (l *ContentLoader) LoadSegments(_ context.Context, exerciseID string) ([]domain.Segment, error) {
	if exerciseID == "" || strings.ContainsAny(exerciseID, `/\`) || strings.Contains(exerciseID, "..") {
		return nil, domain.ErrExerciseNotFound
	}
	var segments []domain.Segment
	err := readJSON(filepath.Join(l.dir, "transcripts", exerciseID+".json"), &segments)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: exercise %s: %v", domain.ErrContentLoad, exerciseID, err)
	}
	return segments, nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
