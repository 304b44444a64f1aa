package main

import (
	"context"
	"fmt"
	"log/slog"
)

type refundReason struct {
	Label string `json:"label"`
	Code  string `json:"code"`
}

type returnReason struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var refundReasons = []refundReason{
	{Label: "Damaged or defective", Code: "damaged_defective"},
	{Label: "Wrong item sent", Code: "wrong_item"},
	{Label: "Customer request", Code: "customer_request"},
	{Label: "Duplicate order", Code: "duplicate"},
	{Label: "Quality issue", Code: "quality_issue"},
	{Label: "Other", Code: "other"},
}

var returnReasons = []returnReason{
	{Value: "wrong_size", Label: "Wrong size"},
	{Value: "changed_mind", Label: "Changed mind"},
	{Value: "damaged_defective", Label: "Damaged or defective"},
	{Value: "wrong_item", Label: "Wrong item received"},
	{Value: "not_as_described", Label: "Not as described"},
	{Value: "other", Label: "Other"},
}

// Summary counts the outcome of one push command.
type Summary struct {
	Created int
	Skipped int
	Failed  int
}

// reasonSet describes one admin reason resource.
type reasonSet[T any] struct {
	path string
	key  string
	id   func(T) string
}

var (
	refundReasonSet = reasonSet[refundReason]{
		path: "/refund-reasons",
		key:  "refund_reasons",
		id:   func(r refundReason) string { return r.Code },
	}
	returnReasonSet = reasonSet[returnReason]{
		path: "/return-reasons",
		key:  "return_reasons",
		id:   func(r returnReason) string { return r.Value },
	}
)

// pushReasons creates every reason whose identifier is not already present.
// Failed creations are logged and do not stop the run; a failed or malformed
// listing does.
func pushReasons[T any](ctx context.Context, c *adminClient, set reasonSet[T], reasons []T) (Summary, error) {
	var sum Summary

	raw, err := c.get(ctx, set.path)
	if err != nil {
		return sum, fmt.Errorf("list %s: %w", set.key, err)
	}
	existing, err := decodeList[T](raw, set.key)
	if err != nil {
		return sum, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		seen[set.id(r)] = struct{}{}
	}

	for _, r := range reasons {
		id := set.id(r)
		if _, ok := seen[id]; ok {
			c.logger.Info("skip (exists)", slog.String("id", id))
			sum.Skipped++
			continue
		}
		if _, err := c.post(ctx, set.path, r); err != nil {
			c.logger.Error("failed to create reason",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
			sum.Failed++
			continue
		}
		c.logger.Info("created", slog.String("id", id))
		sum.Created++
	}

	c.logger.Info("done", slog.String("resource", set.key),
		slog.Int("created", sum.Created),
		slog.Int("skipped", sum.Skipped),
		slog.Int("failed", sum.Failed),
	)
	return sum, nil
}
