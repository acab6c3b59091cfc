package backend

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pders01/reflexion/internal/models"
)

// Decisions lists every decision recorded for a thread
func (c *Client) Decisions(ctx context.Context, creds Credentials, threadID string) ([]models.DecisionRecord, error) {
	query := url.Values{}
	if threadID != "" {
		query.Set("thread_id", threadID)
	}

	raw, err := c.getJSON(ctx, "/decisions", query, creds)
	if err != nil {
		return nil, err
	}

	// The backend answers with a bare array; anything else means no decisions.
	var records []models.DecisionRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return []models.DecisionRecord{}, nil
	}
	return records, nil
}

// PendingDecisions loads the decisions of a thread that still await a
// verdict and decodes their preview diffs. A blank thread yields no items.
// A decision whose preview fails to decode is still listed, without a
// preview and with the decode error in PreviewError.
func (c *Client) PendingDecisions(ctx context.Context, creds Credentials, threadID string) ([]models.PreviewItem, error) {
	if strings.TrimSpace(threadID) == "" {
		return []models.PreviewItem{}, nil
	}

	records, err := c.Decisions(ctx, creds, threadID)
	if err != nil {
		return nil, err
	}

	items := make([]models.PreviewItem, 0, len(records))
	for _, r := range records {
		if r.ID == "" || r.Status != models.DecisionStatusPending {
			continue
		}
		item, err := DecodePreview(r, threadID)
		if err != nil {
			item.Kind = models.PreviewNone
			item.Hydration, item.ConceptBrief = nil, nil
			item.PreviewError = err.Error()
		}
		items = append(items, item)
	}
	return items, nil
}
