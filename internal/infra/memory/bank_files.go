package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"exam-session-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileBankLoader reads question banks from YAML files named <quizID>.yaml
// (or .yml) inside a directory.
type FileBankLoader struct {
	dir string
}

func NewFileBankLoader(dir string) *FileBankLoader {
	return &FileBankLoader{dir: dir}
}

func (l *FileBankLoader) LoadBank(_ context.Context, quizID string) (domain.QuestionBank, error) {
	if quizID == "" || filepath.Base(quizID) != quizID {
		return domain.QuestionBank{}, domain.ErrQuizNotFound
	}
	for _, ext := range []string{".yaml", ".yml"} {
		bank, err := ReadBankFile(filepath.Join(l.dir, quizID+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return domain.QuestionBank{}, err
		}
		if bank.QuizID == "" {
			bank.QuizID = quizID
		}
		return bank, nil
	}
	return domain.QuestionBank{}, domain.ErrQuizNotFound
}

// ReadBankFile decodes one YAML question bank.
func ReadBankFile(path string) (domain.QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.QuestionBank{}, err
	}
	var bank domain.QuestionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("decode bank %s: %w", path, err)
	}
	return bank, nil
}
