package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"chapter-quiz-service/internal/domain"
)

// FileLoader reads banks from <dir>/<subject>.json.
type FileLoader struct {
	dir string
}

func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{dir: dir}
}

func (l *FileLoader) LoadBank(_ context.Context, subject string) (domain.QuestionBank, error) {
	if !domain.ValidSubject(subject) {
		return domain.QuestionBank{}, domain.ErrSubjectNotFound
	}
	data, err := os.ReadFile(filepath.Join(l.dir, subject+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.QuestionBank{}, domain.ErrSubjectNotFound
	}
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
	}
	return domain.ParseBank(subject, data)
}
