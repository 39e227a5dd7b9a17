package llm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/joescharf/recode/internal/apperr"
)

const contentPath = "choices.0.message.content"

// checkedDoer sends chat completion requests and rejects any response that
// is not a 2xx carrying choices[0].message.content. Rejections keep the raw
// response body so it can be shown to the user.
type checkedDoer struct {
	client *http.Client
}

func (d *checkedDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Accept", "application/json")
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &apperr.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperr.TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if !gjson.ValidBytes(body) {
		return nil, &apperr.TransportError{StatusCode: resp.StatusCode, Body: string(body), Err: errors.New("response is not valid JSON")}
	}
	if content := gjson.GetBytes(body, contentPath); content.Type != gjson.String {
		return nil, &apperr.TransportError{StatusCode: resp.StatusCode, Body: string(body), Err: errors.New("response has no " + contentPath)}
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
