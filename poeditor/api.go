package poeditor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/minios-linux/poesync/terms"
)

// Language is one project language from languages/list.
type Language struct {
	Name         string  `json:"name"`
	Code         string  `json:"code"`
	Translations int     `json:"translations"`
	Percentage   float64 `json:"percentage"`
	Updated      string  `json:"updated"`
}

// TermsResult reports what terms/add or terms/update did.
type TermsResult struct {
	Parsed  int `json:"parsed"`
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

// ListLanguages returns the project's languages.
func (c *Client) ListLanguages(ctx context.Context) ([]Language, error) {
	var res struct {
		Languages []Language `json:"languages"`
	}
	if err := c.call(ctx, "languages/list", nil, &res); err != nil {
		return nil, err
	}
	return res.Languages, nil
}

// remoteTerm is the terms/list wire shape.
type remoteTerm struct {
	Term        string `json:"term"`
	Context     string `json:"context"`
	Plural      string `json:"plural"`
	Reference   string `json:"reference"`
	Comment     string `json:"comment"`
	Translation struct {
		Content json.RawMessage `json:"content"`
	} `json:"translation"`
}

// ListTerms returns the project's terms with their translation in lang.
func (c *Client) ListTerms(ctx context.Context, lang string) ([]terms.Term, error) {
	params := url.Values{}
	params.Set("language", lang)

	var res struct {
		Terms []remoteTerm `json:"terms"`
	}
	if err := c.call(ctx, "terms/list", params, &res); err != nil {
		return nil, err
	}

	out := make([]terms.Term, 0, len(res.Terms))
	for _, rt := range res.Terms {
		out = append(out, terms.Term{
			Term:       rt.Term,
			Definition: rt.Translation.Content,
			Context:    rt.Context,
			TermPlural: rt.Plural,
			Reference:  rt.Reference,
			Comment:    rt.Comment,
		})
	}
	return out, nil
}

// ExportLanguage asks POEditor to export lang and returns the download URL.
func (c *Client) ExportLanguage(ctx context.Context, lang string) (string, error) {
	params := url.Values{}
	params.Set("language", lang)
	params.Set("type", ExportType)

	var res struct {
		URL string `json:"url"`
	}
	if err := c.call(ctx, "projects/export", params, &res); err != nil {
		return "", err
	}
	if res.URL == "" {
		return "", fmt.Errorf("poeditor projects/export: no URL returned for %q", lang)
	}
	return res.URL, nil
}

// FetchExport downloads an exported file and parses it as a flat object.
func (c *Client) FetchExport(ctx context.Context, exportURL string) ([]terms.Term, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading export: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("downloading export: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading export: status %d", resp.StatusCode)
	}

	// An untranslated language exports as an empty array.
	if bytes.Equal(bytes.TrimSpace(body), []byte("[]")) {
		return nil, nil
	}

	list, err := terms.ParseObject(body)
	if err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}
	return list, nil
}

// termPayload is the terms/add and terms/update wire shape.
type termPayload struct {
	Term      string `json:"term"`
	Context   string `json:"context,omitempty"`
	Reference string `json:"reference,omitempty"`
	Plural    string `json:"plural,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

func payload(list []terms.Term) ([]byte, error) {
	out := make([]termPayload, 0, len(list))
	for _, t := range list {
		out = append(out, termPayload{
			Term:      t.Term,
			Context:   t.Context,
			Reference: t.Reference,
			Plural:    t.TermPlural,
			Comment:   t.Comment,
		})
	}
	return json.Marshal(out)
}

// AddTerms adds terms to the project. Terms that already exist are ignored
// by POEditor.
func (c *Client) AddTerms(ctx context.Context, list []terms.Term) (TermsResult, error) {
	return c.submitTerms(ctx, "terms/add", list)
}

// UpdateTerms updates the metadata of existing terms.
func (c *Client) UpdateTerms(ctx context.Context, list []terms.Term) (TermsResult, error) {
	return c.submitTerms(ctx, "terms/update", list)
}

func (c *Client) submitTerms(ctx context.Context, action string, list []terms.Term) (TermsResult, error) {
	data, err := payload(list)
	if err != nil {
		return TermsResult{}, fmt.Errorf("encoding terms: %w", err)
	}

	params := url.Values{}
	params.Set("data", string(data))

	var res struct {
		Terms TermsResult `json:"terms"`
	}
	if err := c.call(ctx, action, params, &res); err != nil {
		return TermsResult{}, err
	}
	return res.Terms, nil
}
