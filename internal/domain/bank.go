package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// QuestionBank maps chapter names to their questions for one subject.
// Chapters keep the order in which they appear in the source document.
type QuestionBank struct {
	Subject  string
	Chapters []Chapter
}

// Chapter looks a chapter up by name.
func (b QuestionBank) Chapter(name string) (Chapter, bool) {
	for _, ch := range b.Chapters {
		if ch.Name == name {
			return ch, true
		}
	}
	return Chapter{}, false
}

// ChapterNames lists chapter names in bank order.
func (b QuestionBank) ChapterNames() []string {
	names := make([]string, 0, len(b.Chapters))
	for _, ch := range b.Chapters {
		names = append(names, ch.Name)
	}
	return names
}

// MarshalJSON encodes the bank as {"chapter": [questions...]} in chapter order.
func (b QuestionBank) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ch := range b.Chapters {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ch.Name)
		if err != nil {
			return nil, err
		}
		questions := ch.Questions
		if questions == nil {
			questions = []Question{}
		}
		value, err := json.Marshal(questions)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a chapter object while preserving key order.
func (b *QuestionBank) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("question bank: expected object, got %v", tok)
	}

	seen := make(map[string]struct{})
	chapters := make([]Chapter, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("question bank: expected chapter name, got %v", tok)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("question bank: duplicate chapter %q", name)
		}
		seen[name] = struct{}{}

		var questions []Question
		if err := dec.Decode(&questions); err != nil {
			return fmt.Errorf("question bank: chapter %q: %w", name, err)
		}
		chapters = append(chapters, Chapter{Name: name, Questions: questions})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	b.Chapters = chapters
	return nil
}

var subjectPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidSubject reports whether subject is a safe bank identifier.
func ValidSubject(subject string) bool {
	return subjectPattern.MatchString(subject)
}

// ParseBank decodes and validates a bank document. Any failure is reported as
// ErrLoadFailed.
func ParseBank(subject string, data []byte) (QuestionBank, error) {
	var bank QuestionBank
	if err := json.Unmarshal(data, &bank); err != nil {
		return QuestionBank{}, fmt.Errorf("%w: subject %q: %v", ErrLoadFailed, subject, err)
	}
	if err := bank.Validate(); err != nil {
		return QuestionBank{}, fmt.Errorf("%w: subject %q: %v", ErrLoadFailed, subject, err)
	}
	bank.Subject = subject
	return bank, nil
}
