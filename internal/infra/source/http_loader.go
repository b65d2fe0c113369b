package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chapter-quiz-service/internal/domain"
)

// maxBankBytes caps how much of a response body is read.
const maxBankBytes = 8 << 20

// HTTPLoader fetches banks with GET <baseURL>/<subject>.json.
type HTTPLoader struct {
	baseURL string
	client  *http.Client
}

func NewHTTPLoader(baseURL string, client *http.Client) *HTTPLoader {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPLoader{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (l *HTTPLoader) LoadBank(ctx context.Context, subject string) (domain.QuestionBank, error) {
	if !domain.ValidSubject(subject) {
		return domain.QuestionBank{}, domain.ErrSubjectNotFound
	}
	endpoint := l.baseURL + "/" + url.PathEscape(subject) + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.QuestionBank{}, domain.ErrSubjectNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return domain.QuestionBank{}, fmt.Errorf("%w: GET %s: status %d", domain.ErrLoadFailed, endpoint, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBankBytes))
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("%w: read body: %v", domain.ErrLoadFailed, err)
	}
	return domain.ParseBank(subject, data)
}
