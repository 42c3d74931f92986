package importer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pathshala/pathshala/internal/models"
	"github.com/xuri/excelize/v2"
)

// Column names recognised in the header row of a question sheet. Headers
// are matched case-insensitively with spaces and dashes read as underscores.
var questionColumns = map[string]string{
	"question":    "question",
	"q":           "question",
	"option_a":    "option_a",
	"a":           "option_a",
	"option_b":    "option_b",
	"b":           "option_b",
	"option_c":    "option_c",
	"c":           "option_c",
	"option_d":    "option_d",
	"d":           "option_d",
	"answer":      "answer",
	"correct":     "answer",
	"explanation": "explanation",
	"subject":     "subject",
	"chapter":     "chapter",
	"board":       "board",
	"year":        "year",
}

var optionColumns = []string{"option_a", "option_b", "option_c", "option_d"}

func headerKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	return questionColumns[h]
}

// parseQuestionSheets reads every sheet whose header row has a question
// column. The sheet name stands in for a missing subject column.
func parseQuestionSheets(content []byte) ([]*models.Question, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var out []*models.Question
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}
		cols := make(map[string]int)
		for i, h := range rows[0] {
			if k := headerKey(h); k != "" {
				if _, dup := cols[k]; !dup {
					cols[k] = i
				}
			}
		}
		if _, ok := cols["question"]; !ok {
			continue
		}
		for _, row := range rows[1:] {
			if q := questionFromRow(row, cols, sheet); q != nil {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

func questionFromRow(row []string, cols map[string]int, sheet string) *models.Question {
	get := func(k string) string {
		i, ok := cols[k]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	q := &models.Question{
		Question:    get("question"),
		Answer:      get("answer"),
		Explanation: get("explanation"),
		Subject:     get("subject"),
		Chapter:     get("chapter"),
		Board:       get("board"),
	}
	if q.Question == "" {
		return nil
	}
	if q.Subject == "" {
		q.Subject = sheet
	}
	columns := make([]string, len(optionColumns))
	for i, k := range optionColumns {
		columns[i] = get(k)
		if columns[i] != "" {
			q.Options = append(q.Options, columns[i])
		}
	}
	q.Answer = resolveAnswer(q.Answer, columns)
	if y, err := strconv.Atoi(get("year")); err == nil {
		q.Year = y
	}
	return q
}

// resolveAnswer turns an option letter (A-D) into the text of that option
// column. columns is indexed by letter, blanks included; a letter naming a
// blank column is kept as given.
func resolveAnswer(answer string, columns []string) string {
	if len(answer) != 1 {
		return answer
	}
	i := int(strings.ToLower(answer)[0]) - 'a'
	if i < 0 || i >= len(columns) || columns[i] == "" {
		return answer
	}
	return columns[i]
}
