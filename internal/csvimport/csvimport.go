package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/vigilo-labs/vigil-backend/internal/model"
)

// expected header columns, matched case-insensitively.
var headerColumns = []string{"Question", "Option A", "Option B", "Option C", "Option D", "Correct Answer"}

// ParseObjectiveQuestions reads a CSV of multiple choice questions.
// Rows with missing cells are skipped; an error is returned only when
// the header is wrong or no valid row remains.
func ParseObjectiveQuestions(r io.Reader) ([]model.ObjectiveQuestionInput, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var questions []model.ObjectiveQuestionInput
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if len(record) < len(headerColumns) {
			continue
		}

		q := model.ObjectiveQuestionInput{
			Prompt:  strings.TrimSpace(record[0]),
			OptionA: strings.TrimSpace(record[1]),
			OptionB: strings.TrimSpace(record[2]),
			OptionC: strings.TrimSpace(record[3]),
			OptionD: strings.TrimSpace(record[4]),
			Answer:  strings.TrimSpace(record[5]),
		}
		if q.Prompt == "" || q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "" || q.Answer == "" {
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("CSV contains no valid question rows")
	}
	return questions, nil
}

func checkHeader(header []string) error {
	if len(header) < len(headerColumns) {
		return fmt.Errorf("CSV header has %d columns, expected %d", len(header), len(headerColumns))
	}
	for i, want := range headerColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("CSV header column %d is %q, expected %q", i+1, header[i], want)
		}
	}
	return nil
}
